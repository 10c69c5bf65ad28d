package cli

import (
	"context"

	"github.com/dmitrijs2005/borderease/internal/client/forms"
	"github.com/dmitrijs2005/borderease/internal/client/guard"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
)

func (a *App) Login(ctx context.Context, _ []string) error {
	if id := a.sessions.Current().Identity; id != nil {
		a.printf("Already signed in as %s.\n", id.Email)
		return nil
	}

	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	if err := forms.ValidateLogin(email, password); err != nil {
		a.report(err, "")
		return err
	}

	if _, err := a.sessions.SignIn(ctx, email, password); err != nil {
		a.report(err, "Failed to login. Please try again.")
		return err
	}
	a.success("Welcome back!")
	a.afterSignIn(ctx)
	return nil
}

func (a *App) Google(ctx context.Context, _ []string) error {
	if id := a.sessions.Current().Identity; id != nil {
		a.printf("Already signed in as %s.\n", id.Email)
		return nil
	}

	a.printf("Continue in your browser to sign in with Google...\n")
	if _, err := a.sessions.SignInFederated(ctx); err != nil {
		a.report(err, "Failed to login with Google.")
		return err
	}
	a.success("Welcome!")
	a.afterSignIn(ctx)
	return nil
}

func (a *App) Register(ctx context.Context, _ []string) error {
	if id := a.sessions.Current().Identity; id != nil {
		a.printf("Already signed in as %s.\n", id.Email)
		return nil
	}

	var r forms.Registration
	var err error
	if r.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if r.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if r.PhotoURL, err = GetSimpleText(a.reader, "Photo URL (optional)", a.out); err != nil {
		return err
	}
	a.printf("Password needs at least 6 characters, one uppercase and one lowercase letter.\n")
	if r.Password, err = GetPassword(a.reader, "Password", a.out); err != nil {
		return err
	}
	if r.ConfirmPassword, err = GetPassword(a.reader, "Confirm password", a.out); err != nil {
		return err
	}
	if err := forms.ValidateRegistration(r); err != nil {
		a.report(err, "")
		return err
	}

	if _, err := a.sessions.SignUp(ctx, r.Email, r.Password, r.Name, r.PhotoURL); err != nil {
		a.report(err, "Failed to register. Please try again.")
		return err
	}
	a.success("Account created successfully!")

	a.mu.Lock()
	a.returnTo = ""
	a.mu.Unlock()
	return a.Home(ctx, nil)
}

// Logout signs out, drops the user's cached lists and leaves protected
// pages at once.
func (a *App) Logout(ctx context.Context, _ []string) error {
	id := a.sessions.Current().Identity
	if id == nil {
		a.printf("You are not signed in.\n")
		return nil
	}

	if err := a.sessions.SignOut(ctx); err != nil {
		a.report(err, "Failed to logout. Please try again.")
		return err
	}
	if a.offline != nil {
		if err := a.offline.ClearUserData(ctx, id.Email); err != nil {
			a.logger.Warn(ctx, "failed to clear cached user data", "error", err)
		}
	}
	a.success("Logged out successfully")

	if loc := a.Location(); guard.Protected(loc) {
		a.enter(ctx, loc)
	}
	return nil
}

func (a *App) Profile(ctx context.Context, _ []string) error {
	if !a.enter(ctx, "/profile") {
		return pages.ErrNotSignedIn
	}
	a.open("/profile", nil)

	id := a.sessions.Current().Identity
	if id == nil {
		return nil
	}
	heading(a.out, "Profile")
	a.printf("  Name:  %s\n  Email: %s\n  Photo: %s\n", id.DisplayName, id.Email, id.PhotoURL)

	ok, err := Confirm(a.reader, "Update your profile?", a.out)
	if err != nil || !ok {
		return err
	}
	name, err := GetWithDefault(a.reader, "Name", id.DisplayName, a.out)
	if err != nil {
		return err
	}
	photo, err := GetWithDefault(a.reader, "Photo URL", id.PhotoURL, a.out)
	if err != nil {
		return err
	}
	if err := forms.ValidateProfile(name, photo); err != nil {
		a.report(err, "")
		return err
	}
	if err := a.sessions.UpdateProfile(ctx, name, photo); err != nil {
		a.report(err, "Failed to update profile. Please try again.")
		return err
	}
	a.success("Profile updated successfully!")
	return nil
}

func (a *App) Theme(ctx context.Context, _ []string) error {
	if a.theme == nil {
		return nil
	}
	t, err := a.theme.Toggle(ctx)
	if err != nil {
		a.report(err, "Could not save the theme.")
		return err
	}
	a.printf("Theme: %s\n", t)
	return nil
}
