package models

// Profile is one of the console's fixed persona presets. Exactly one profile
// is current at any time; switching replaces the whole value.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Descriptor  string `json:"descriptor"`
}

// Profiles is the fixed persona set. Selection is by ID only.
var Profiles = []Profile{
	{
		ID:          "bleak",
		DisplayName: "Bleak",
		Descriptor:  "terse, pessimistic operator; answers in as few words as possible",
	},
	{
		ID:          "oracle",
		DisplayName: "Oracle",
		Descriptor:  "expansive, speculative narrator; embraces tangents and lore",
	},
	{
		ID:          "warden",
		DisplayName: "Warden",
		Descriptor:  "procedural, safety-first administrator; cites status and protocol",
	},
}

// DefaultProfile is the profile active at startup.
var DefaultProfile = Profiles[0]

// FindProfile looks a profile up by id. The second return reports whether the
// id belongs to the fixed set.
func FindProfile(id string) (Profile, bool) {
	for _, p := range Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// ProfileIDs returns every valid profile id, in declaration order.
func ProfileIDs() []string {
	ids := make([]string, len(Profiles))
	for i, p := range Profiles {
		ids[i] = p.ID
	}
	return ids
}
