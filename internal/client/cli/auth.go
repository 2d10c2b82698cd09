package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/client/api"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email, a name and a password and creates
// a new account. Registration also opens a session, so the user is logged in
// on success. The password byte slice is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Register(ctx, email, name, password)
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Printf("Welcome, %s!\n", user.Name)
	return nil
}

// Login prompts the user for credentials and opens a session. The password is
// securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			log.Printf("Server unavailable: %s", err.Error())
		} else {
			log.Printf("Login unsuccessful: %s", err.Error())
		}
		return err
	}

	fmt.Printf("Welcome back, %s!\n", user.Name)
	return nil
}

// WhoAmI asks the server who owns the current session and prints the answer.
// A 401 clears the cached token as a side effect of the transport, so a stale
// session heals itself here.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Println("Not logged in")
			return nil
		}
		log.Printf("error: %s", err.Error())
		return err
	}

	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}

// Logout revokes the session on the server and drops the cached token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil {
		log.Printf("Logout unsuccessful: %s", err.Error())
		return err
	}
	fmt.Println("Logged out")
	return nil
}

// RequestReset asks the server to mail a password reset link.
func (a *App) RequestReset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	msg, err := a.api.RequestPasswordReset(ctx, email)
	if err != nil {
		log.Printf("error: %s", err.Error())
		return err
	}

	fmt.Println(msg)
	return nil
}

// ResetPassword completes a password reset with the token from the email.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	token, err := getSimpleText(a.reader, "Enter reset token", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.api.ResetPassword(ctx, email, token, password)
	if err != nil {
		log.Printf("Reset unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println(msg)
	return nil
}
