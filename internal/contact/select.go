package contact

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// GroupPolicy controls how contact rows are grouped into owner identities
// before first-contact selection. Grouping by (id, name) is the canonical
// behavior; id-only grouping collapses co-owners of one property into a
// single identity.
type GroupPolicy string

const (
	GroupByIDName GroupPolicy = "id_name"
	GroupByID     GroupPolicy = "id"
)

// ParseGroupPolicy validates a policy string from config or flags.
func ParseGroupPolicy(s string) (GroupPolicy, error) {
	switch GroupPolicy(s) {
	case GroupByIDName, GroupByID:
		return GroupPolicy(s), nil
	case "":
		return GroupByIDName, nil
	}
	return "", eris.Errorf("contact: unknown group policy %q", s)
}

func (p GroupPolicy) key(c model.ContactRecord) model.OwnerIdentity {
	if p == GroupByID {
		return model.OwnerIdentity{ID: c.ID}
	}
	return c.Owner()
}

// Reducer reduces a contact table to at most one phone and one email per
// owner identity.
type Reducer struct {
	Policy GroupPolicy
}

// NewReducer returns a Reducer with the canonical id+name grouping.
func NewReducer() Reducer {
	return Reducer{Policy: GroupByIDName}
}

// SelectFirstPerOwner picks, for each owner identity in first-seen order, the
// earliest phone row and the earliest email row by original table order, and
// marks every output row SendTo. An identity with no rows of a given type
// simply contributes none of that type. The reduction is idempotent and an
// empty input yields an empty, non-nil output.
func (r Reducer) SelectFirstPerOwner(contacts []model.ContactRecord) []model.ContactRecord {
	type picks struct {
		phone *model.ContactRecord
		email *model.ContactRecord
	}

	order := make([]model.OwnerIdentity, 0, len(contacts))
	byOwner := make(map[model.OwnerIdentity]*picks, len(contacts))

	for i := range contacts {
		c := contacts[i]
		key := r.Policy.key(c)
		p, ok := byOwner[key]
		if !ok {
			p = &picks{}
			byOwner[key] = p
			order = append(order, key)
		}
		switch c.Type {
		case model.ContactTypePhone:
			if p.phone == nil {
				p.phone = &contacts[i]
			}
		case model.ContactTypeEmail:
			if p.email == nil {
				p.email = &contacts[i]
			}
		}
	}

	out := make([]model.ContactRecord, 0, 2*len(order))
	for _, key := range order {
		p := byOwner[key]
		if p.phone != nil {
			rec := *p.phone
			rec.SendTo = true
			out = append(out, rec)
		}
		if p.email != nil {
			rec := *p.email
			rec.SendTo = true
			out = append(out, rec)
		}
	}

	return out
}
