package cli

import (
	"context"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register creates an account. The password is wiped by the session service.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	u, err := a.session.Register(ctx, email, password)
	if err != nil {
		return err
	}

	a.printf("Account %s created. Type 'login' to sign in.\n", u.Email)
	return nil
}

// Login authenticates and saves the session locally, then offers the drafts
// left over from an interrupted edit.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		a.logger.Info(ctx, "login unsuccessful", "error", err)
		return err
	}

	a.printf("Logged in as %s\n", u.Email)
	if !u.Onboarded {
		a.printf("Welcome! Type 'help' to see what you can do, then 'onboarding' to hide this message.\n")
	}
	a.offerDrafts(ctx)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.printf("Logged out\n")
	return nil
}

// ChangePassword asks for the current and the new password.
func (a *App) ChangePassword(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}

	oldPassword, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	if err := a.api.ChangePassword(ctx, string(oldPassword), string(newPassword)); err != nil {
		return err
	}
	a.printf("Password changed\n")
	return nil
}

func (a *App) CompleteOnboarding(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return common.ErrAuthenticationRequired
	}
	if err := a.api.CompleteOnboarding(ctx); err != nil {
		return err
	}
	a.printf("Onboarding completed\n")
	return nil
}
