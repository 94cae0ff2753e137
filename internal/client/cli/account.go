package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
)

// Whoami shows the signed-in account's profile and recent logins.
func (a *App) Whoami(ctx context.Context) error {
	user, err := a.accounts.Get(ctx, a.userID)
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email:    %s\n", user.Email)
	fmt.Printf("Roles:    %s\n", strings.Join(user.Roles, ", "))
	if user.Location != "" {
		fmt.Printf("Location: %s\n", user.Location)
	}
	if len(user.Logins) > 0 {
		fmt.Println("Recent logins:")
		for _, at := range user.Logins {
			fmt.Printf("  %s\n", at.Local().Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

// Update prompts for new field values; empty input leaves a field unchanged.
func (a *App) Update(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "New username (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "New password (empty to keep)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form := client.UpdateUserForm{}
	if username != "" {
		if r := validate.Username(username); !r.Valid {
			fmt.Println("username:", r.Reason)
			return nil
		}
		form.Username = &username
	}
	if email != "" {
		if r := validate.Email(email); !r.Valid {
			fmt.Println("email:", r.Reason)
			return nil
		}
		form.Email = &email
	}
	if len(password) > 0 {
		pwd := string(password)
		if r := validate.Password(pwd); !r.Valid {
			fmt.Println("password:", r.Reason)
			return nil
		}
		form.Password = &pwd
	}
	if form.Username == nil && form.Email == nil && form.Password == nil {
		fmt.Println("Nothing to update.")
		return nil
	}

	if err := a.accounts.Update(ctx, form); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			fmt.Println("Username or email is already taken.")
			return nil
		}
		return err
	}

	if form.Password != nil {
		// the server revoked every session on password change
		fmt.Println("Password changed, please sign in again.")
		a.userID = ""
		a.email = ""
		return nil
	}
	fmt.Println("Updated.")
	return nil
}

// Delete soft-deletes the signed-in account after confirmation. The account
// can be restored later by signing up with the same email.
func (a *App) Delete(ctx context.Context) error {
	confirmed, err := getConfirmation(a.reader, "Delete your account? It can be restored later", os.Stdout)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if err := a.accounts.Delete(ctx, a.userID); err != nil {
		return err
	}

	a.userID = ""
	a.email = ""
	fmt.Println("Account deleted.")
	return nil
}

// RequestReset asks the server to email a password reset link.
func (a *App) RequestReset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.auth.RequestPasswordReset(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Println("No account with that email.")
			return nil
		}
		return err
	}
	fmt.Println("Reset link sent, check your inbox.")
	return nil
}

// ConfirmReset submits a token from the reset email with a new password.
func (a *App) ConfirmReset(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ConfirmPasswordReset(ctx, token, string(password)); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			fmt.Println("Reset link is invalid or expired.")
			return nil
		}
		if errors.Is(err, common.ErrorInvalidEntry) {
			fmt.Println("Password does not meet the requirements.")
			return nil
		}
		return err
	}
	fmt.Println("Password changed, you can sign in now.")
	return nil
}

// UploadPicture uploads a profile picture from a local file.
func (a *App) UploadPicture(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to image file", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.accounts.UploadProfilePicture(ctx, a.userID, path); err != nil {
		return err
	}
	fmt.Println("Uploaded.")
	return nil
}

// ShowPicture prints a temporary download URL for the profile picture.
func (a *App) ShowPicture(ctx context.Context) error {
	url, err := a.accounts.ProfileImageURL(ctx, a.userID)
	if err != nil {
		return err
	}
	fmt.Println(url)
	return nil
}
