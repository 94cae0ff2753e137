package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

// Root runs the interactive command loop until EOF or "exit".
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to the account CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("acct %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: whoami, update, picture, upload, delete, signout, exit")
			} else {
				fmt.Println("Available commands: signup, signin, resetrequest, reset, exit")
			}

		case "signup":
			a.runCommand(ctx, a.Signup)
		case "signin":
			a.runCommand(ctx, a.SignIn)
		case "resetrequest":
			a.runCommand(ctx, a.RequestReset)
		case "reset":
			a.runCommand(ctx, a.ConfirmReset)
		case "whoami":
			a.runLoggedIn(ctx, a.Whoami)
		case "update":
			a.runLoggedIn(ctx, a.Update)
		case "upload":
			a.runLoggedIn(ctx, a.UploadPicture)
		case "picture":
			a.runLoggedIn(ctx, a.ShowPicture)
		case "delete":
			a.runLoggedIn(ctx, a.Delete)
		case "signout":
			a.runLoggedIn(ctx, a.SignOut)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) runCommand(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Printf("error: %s", err.Error())
	}
}

func (a *App) runLoggedIn(ctx context.Context, fn func(context.Context) error) {
	if !a.isLoggedIn() {
		fmt.Println("Sign in first.")
		return
	}
	a.runCommand(ctx, fn)
}
