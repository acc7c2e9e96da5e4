package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out       io.Writer
	migrate   func(ctx context.Context) error
	bootstrap service.BootstrapService
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate - apply database migrations")
	fmt.Fprintln(cli.out, "  seed - create default settings, universities and the configured admin")
	fmt.Fprintln(cli.out, "  createadmin -username USERNAME -email EMAIL -name FULL_NAME - create an administrator")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset an account's password")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	createAdminUname := createAdminCmd.String("username", "", "The admin's username.")
	createAdminEmail := createAdminCmd.String("email", "", "The admin's e-mail address.")
	createAdminName := createAdminCmd.String("name", "", "The admin's full name. The password will be prompted next.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The account's username. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if err := cli.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "migrations applied")
		return nil
	case "seed":
		report, err := cli.bootstrap.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "settings created: %t, universities created: %v, admin created: %t\n",
			report.SettingsCreated, report.UniversitiesCreated, report.AdminCreated)
		return nil
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *createAdminUname == "" || *createAdminEmail == "" || *createAdminName == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		account, err := cli.bootstrap.CreateAdmin(ctx, service.AdminCredentials{
			Username: *createAdminUname,
			Email:    *createAdminEmail,
			FullName: *createAdminName,
			Password: pwd,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "admin %q created with id %d\n", account.Username, account.ID)
		return nil
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		if err := cli.bootstrap.ResetPassword(ctx, *resetPasswordUname, pwd); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "password for %q updated\n", *resetPasswordUname)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
