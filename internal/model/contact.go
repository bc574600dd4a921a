package model

// ContactType is the channel of a contact record. The enum is closed: the
// normalizer coerces anything else to ContactTypePhone rather than rejecting
// the row.
type ContactType string

const (
	ContactTypePhone ContactType = "phone_number"
	ContactTypeEmail ContactType = "email"
)

// Valid reports whether t is one of the two closed enum values.
func (t ContactType) Valid() bool {
	return t == ContactTypePhone || t == ContactTypeEmail
}

// ContactRecord is one (owner, channel) pair scraped or uploaded for a
// property. The deduplication key is the full (ID, Name, Type, Value) tuple;
// an owner routinely carries several phone numbers.
type ContactRecord struct {
	ID             string      `json:"id" csv:"id"`
	Name           string      `json:"name" csv:"name"`
	Type           ContactType `json:"type" csv:"type"`
	Value          string      `json:"value" csv:"value"`
	Address        string      `json:"address" csv:"address"`
	CurrentAddress string      `json:"current_address" csv:"current_address"`
	Selected       bool        `json:"selected" csv:"selected"`
	SendTo         bool        `json:"send_to,omitempty" csv:"-"`
}

// OwnerIdentity groups contact records belonging to one owner of one
// property. Grouping is by (ID, Name), not ID alone: two owners sharing a
// property id are distinct identities.
type OwnerIdentity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Owner returns the grouping identity for c.
func (c ContactRecord) Owner() OwnerIdentity {
	return OwnerIdentity{ID: c.ID, Name: c.Name}
}

// Key returns the full deduplication tuple for c.
func (c ContactRecord) Key() [4]string {
	return [4]string{c.ID, c.Name, string(c.Type), c.Value}
}

// SampleContacts returns the fallback contact dataset: one phone and one
// email for the canonical sample owner.
func SampleContacts() []ContactRecord {
	const (
		id   = "TEST-00-00-0000-00000"
		name = "Test Owner"
		addr = "123 Test Street, Test City, FL 12345"
	)
	return []ContactRecord{
		{ID: id, Name: name, Type: ContactTypePhone, Value: "(111) 111-1111", Address: addr, CurrentAddress: addr, Selected: true},
		{ID: id, Name: name, Type: ContactTypeEmail, Value: "test@test.com", Address: addr, CurrentAddress: addr, Selected: true},
	}
}

// SampleContactsMultiOwner returns a larger fixture with three owners on one
// property id, two phones and one email each. Used by the notify stage when
// the workflow is fast-forwarded without real contact data.
func SampleContactsMultiOwner() []ContactRecord {
	const (
		id   = "TEST-PROPERTY-ID"
		addr = "123 Test Street, Test City, FL 12345"
	)
	out := make([]ContactRecord, 0, 9)
	owners := []struct {
		name   string
		phones [2]string
		email  string
	}{
		{"Test Owner 1", [2]string{"(111) 111-1111", "(111) 111-2222"}, "test1@example.com"},
		{"Test Owner 2", [2]string{"(222) 222-1111", "(222) 222-2222"}, "test2@example.com"},
		{"Test Owner 3", [2]string{"(333) 333-1111", "(333) 333-2222"}, "test3@example.com"},
	}
	for _, o := range owners {
		for _, p := range o.phones {
			out = append(out, ContactRecord{ID: id, Name: o.name, Type: ContactTypePhone, Value: p, Address: addr, CurrentAddress: addr, Selected: true})
		}
		out = append(out, ContactRecord{ID: id, Name: o.name, Type: ContactTypeEmail, Value: o.email, Address: addr, CurrentAddress: addr, Selected: true})
	}
	return out
}
