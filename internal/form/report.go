package form

import (
	"sort"

	"github.com/specialistvlad/dynaform/internal/ext/validation"
	"github.com/specialistvlad/dynaform/internal/field"
)

// Report summarises the form state for hosts without a UI.
type Report struct {
	Model  map[string]any                  `json:"model"`
	Valid  bool                            `json:"valid"`
	Status string                          `json:"status"`
	Errors map[string][]validation.Message `json:"errors,omitempty"`
	Hidden []string                        `json:"hidden,omitempty"`
}

// Report collects the model, the root status, the displayable messages per
// key path and the key paths of hidden nodes.
func (f *Form) Report() Report {
	r := Report{
		Model:  f.model,
		Valid:  f.group.Valid(),
		Status: string(f.group.Status()),
	}
	if f.root == nil {
		return r
	}
	field.Walk(f.root, func(n *field.Field) {
		if !n.HasKey() {
			return
		}
		p, err := field.FullPath(n)
		if err != nil {
			return
		}
		key := p.String()
		if n.Hidden() {
			r.Hidden = appendUnique(r.Hidden, key)
			return
		}
		if msgs := f.ErrorMessages(n); len(msgs) > 0 {
			if r.Errors == nil {
				r.Errors = make(map[string][]validation.Message)
			}
			if _, seen := r.Errors[key]; !seen {
				r.Errors[key] = msgs
			}
		}
	})
	sort.Strings(r.Hidden)
	return r
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
