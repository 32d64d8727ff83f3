package elevate

// Identity carries the invoking user's home directory, user name, and login
// name. The external patcher tool resolves theme files relative to the real
// user's home, so these must survive into elevated contexts where the
// effective user is root.
//
// Values come from environment variables and are therefore
// attacker-influenceable; every script builder validates them before use.
type Identity struct {
	Home  string
	User  string
	Login string
}

// CurrentIdentity reads the identity from explicit env lookups instead of
// ambient process globals. goos selects the variable set.
func CurrentIdentity(getenv func(string) string, goos string) Identity {
	if goos == "windows" {
		home := getenv("USERPROFILE")
		if home == "" {
			home = getenv("HOME")
		}
		user := getenv("USERNAME")
		return Identity{Home: home, User: user, Login: user}
	}
	user := getenv("USER")
	login := getenv("LOGNAME")
	if login == "" {
		login = user
	}
	return Identity{Home: getenv("HOME"), User: user, Login: login}
}
