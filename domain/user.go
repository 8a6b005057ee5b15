package domain

// DefaultAvatarSeed keys the deterministic placeholder picture served for
// users without an uploaded avatar.
const DefaultAvatarSeed = "default_profile_picture"

// DefaultAvatarURL is the placeholder profile picture URL.
const DefaultAvatarURL = "https://api.dicebear.com/7.x/initials/svg?seed=" + DefaultAvatarSeed

// Profile is the read-only slice of a user account this subsystem consumes:
// who they are, where they are (for timezone rendering), and their picture.
type Profile struct {
	Username  string
	Country   string
	AvatarURL string
}

// Avatar returns the stored picture URL or the deterministic placeholder.
func (p Profile) Avatar() string {
	if p.AvatarURL == "" {
		return DefaultAvatarURL
	}
	return p.AvatarURL
}
