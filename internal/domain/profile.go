package domain

// UserProfile is the locally stored identity of the signed-in user.
type UserProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// ProfilePatch carries the fields to shallow-merge onto a profile.
type ProfilePatch struct {
	Email   *string `json:"email,omitempty"`
	Name    *string `json:"name,omitempty"`
	IsAdmin *bool   `json:"isAdmin,omitempty"`
}

// Merge applies the set fields of p onto base. A nil base merges onto an
// empty profile.
func (p ProfilePatch) Merge(base *UserProfile) UserProfile {
	var out UserProfile
	if base != nil {
		out = *base
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.IsAdmin != nil {
		out.IsAdmin = *p.IsAdmin
	}
	return out
}
