package user

// SetDisplayName returns an UpdateSetter that sets the user's display name.
func SetDisplayName(name string) UpdateSetter {
	return func(u *User) error {
		u.DisplayName = name
		return nil
	}
}

// SetPassword returns an UpdateSetter that sets the user's password.
func SetPassword(password string) UpdateSetter {
	return func(u *User) error {
		return u.SetPassword(password)
	}
}

// MarkCreatedForTest returns an UpdateSetter that flags the user as harness-created.
func MarkCreatedForTest(v bool) UpdateSetter {
	return func(u *User) error {
		u.CreatedForTest = v
		return nil
	}
}
