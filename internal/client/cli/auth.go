package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/validate"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getConfirmation = GetConfirmation

// Signup prompts for the registration form, validates it locally and submits
// it. When the email belongs to a soft-deleted account the server offers to
// restore it instead; the user chooses interactively.
func (a *App) Signup(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(os.Stdout, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	form := validate.Form{
		Username:             username,
		Email:                email,
		Password:             string(password),
		PasswordConfirmation: string(confirmation),
	}
	if !form.Submittable() {
		for field, result := range form.Results() {
			if !result.Valid {
				fmt.Printf("%s: %s\n", field, result.Reason)
			}
		}
		return common.ErrorInvalidEntry
	}

	outcome, err := a.auth.Signup(ctx, client.SignupForm{
		Username:             form.Username,
		Email:                form.Email,
		Password:             form.Password,
		PasswordConfirmation: form.PasswordConfirmation,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			fmt.Println("Username or email is already taken.")
			return nil
		}
		return err
	}

	if outcome.Restorable {
		fmt.Println(outcome.Message)
		restore, err := getConfirmation(a.reader, "Restore the account?", os.Stdout)
		if err != nil {
			return err
		}
		if !restore {
			return nil
		}
		if err := a.auth.Restore(ctx, form.Email); err != nil {
			return err
		}
		fmt.Println("Account restored. Sign in with the password it had before deletion, or use resetrequest if you have forgotten it.")
		return nil
	}

	fmt.Println("Success! You can sign in now.")
	return nil
}

// SignIn prompts for credentials and authenticates. Trusting the device
// persists the session locally so the next run resumes it without a password.
func (a *App) SignIn(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	persist, err := getConfirmation(a.reader, "Trust this device?", os.Stdout)
	if err != nil {
		return err
	}

	session, err := a.auth.SignIn(ctx, email, string(password), persist)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			log.Printf("Sign in unsuccessful: wrong email or password")
			return nil
		}
		if errors.Is(err, common.ErrServerUnavailable) {
			log.Printf("Server unavailable, try again later")
			return nil
		}
		return err
	}

	a.userID = session.UserID
	a.email = email
	log.Printf("Sign in successful")
	return nil
}

// SignOut revokes the session server-side and forgets it locally.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		log.Printf("Sign out error: %s", err.Error())
	}
	a.userID = ""
	a.email = ""
	fmt.Println("Signed out.")
	return nil
}
