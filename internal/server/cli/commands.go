package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"

	"github.com/dmitrijs2005/credstore/internal/common"
	"github.com/dmitrijs2005/credstore/internal/flagx"
	"github.com/dmitrijs2005/credstore/internal/server/models"
)

// parseCommandFlags parses only the flags fs defines; everything else on
// the line belongs to the config loader.
func (a *App) parseCommandFlags(fs *flag.FlagSet, args []string) error {
	var allowed []string
	fs.VisitAll(func(f *flag.Flag) { allowed = append(allowed, "-"+f.Name) })

	fs.SetOutput(a.out)
	if err := fs.Parse(flagx.FilterArgs(args, allowed)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUsage, fs.Name(), err)
	}
	return nil
}

func requireUsername(cmd, username string) error {
	if username == "" {
		return fmt.Errorf("%w: %s: -username is required", ErrUsage, cmd)
	}
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	var (
		username, name, email string
		fromStdin             bool
	)

	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "login name")
	fs.StringVar(&name, "name", "", "display name (optional)")
	fs.StringVar(&email, "email", "", "email address")
	fs.BoolVar(&fromStdin, "password-stdin", false, "read the password from standard input")
	if err := a.parseCommandFlags(fs, args); err != nil {
		return err
	}
	if err := requireUsername("add", username); err != nil {
		return err
	}

	password, err := a.newPassword(fromStdin)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	var displayName *string
	if name != "" {
		displayName = &name
	}

	if err := a.store.Insert(ctx, username, displayName, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s created\n", username)
	return nil
}

func (a *App) auth(ctx context.Context, args []string) error {
	var (
		username  string
		fromStdin bool
	)

	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "login name")
	fs.BoolVar(&fromStdin, "password-stdin", false, "read the password from standard input")
	if err := a.parseCommandFlags(fs, args); err != nil {
		return err
	}
	if err := requireUsername("auth", username); err != nil {
		return err
	}

	password, err := a.readSecret("Password", fromStdin)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ok, err := a.store.Authenticate(ctx, username, string(password))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Access denied")
		return ErrAuthenticationFailed
	}

	fmt.Fprintln(a.out, "Access granted")
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	var username string

	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "login name")
	if err := a.parseCommandFlags(fs, args); err != nil {
		return err
	}
	if err := requireUsername("show", username); err != nil {
		return err
	}

	user, err := a.store.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	name := "(none)"
	if user.DisplayName != nil {
		name = *user.DisplayName
	}

	fmt.Fprintf(a.out, "Username: %s\n", user.Username)
	fmt.Fprintf(a.out, "Display name: %s\n", name)
	fmt.Fprintf(a.out, "Email: %s\n", user.Email)
	fmt.Fprintf(a.out, "Iterations: %d\n", user.Iterations)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	var (
		username, newUsername, name, email string
		clearName, setPassword, fromStdin  bool
	)

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "login name of the record to edit")
	fs.StringVar(&newUsername, "new-username", "", "rename the record")
	fs.StringVar(&name, "name", "", "set the display name")
	fs.BoolVar(&clearName, "clear-name", false, "remove the display name")
	fs.StringVar(&email, "email", "", "set the email address")
	fs.BoolVar(&setPassword, "password", false, "set a new password")
	fs.BoolVar(&fromStdin, "password-stdin", false, "read the new password from standard input")
	if err := a.parseCommandFlags(fs, args); err != nil {
		return err
	}
	if err := requireUsername("edit", username); err != nil {
		return err
	}

	given := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	if given["name"] && clearName {
		return fmt.Errorf("%w: edit: -name and -clear-name are exclusive", ErrUsage)
	}

	var patch models.UserPatch
	if given["new-username"] {
		patch.Username = common.Some(newUsername)
	}
	if given["name"] {
		patch.DisplayName = common.Some(&name)
	}
	if clearName {
		patch.DisplayName = common.Some[*string](nil)
	}
	if given["email"] {
		patch.Email = common.Some(email)
	}
	if setPassword || fromStdin {
		password, err := a.newPassword(fromStdin)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)
		patch.Password = common.Some(string(password))
	}

	if patch.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to change")
		return nil
	}

	if err := a.store.Edit(ctx, username, patch); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s updated\n", username)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	var username string

	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "login name")
	if err := a.parseCommandFlags(fs, args); err != nil {
		return err
	}
	if err := requireUsername("delete", username); err != nil {
		return err
	}

	if err := a.store.Delete(ctx, username); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s deleted\n", username)
	return nil
}

// newPassword reads a password to be stored. On a terminal it is asked
// twice and both entries must match.
func (a *App) newPassword(fromStdin bool) ([]byte, error) {
	password, err := a.readSecret("New password", fromStdin)
	if err != nil || fromStdin {
		return password, err
	}

	repeat, err := a.readSecret("Repeat password", false)
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}
	defer common.WipeByteArray(repeat)

	if !bytes.Equal(password, repeat) {
		common.WipeByteArray(password)
		return nil, fmt.Errorf("%w: passwords do not match", ErrUsage)
	}
	return password, nil
}
