package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/studymatch/apps/container"
	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/subject"
	"github.com/trezcool/studymatch/core/user"
	"github.com/trezcool/studymatch/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = database.Migrate  // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	// services and openDB connect lazily so that `migrate` never needs the app schema.
	services func() (container.Services, error)
	openDB   func() (*sql.DB, error)
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                          - run a goose command (up, down, status, ...)")
	fmt.Println("  adduser -email EMAIL -name NAME -department DEPT - create an account; the password is prompted next")
	fmt.Println("  resetpassword -email EMAIL                      - reset user's password")
	fmt.Println("  seedsubjects                                    - add the default subject catalog")
	fmt.Println("  remind -within DURATION                         - notify participants of confirmed sessions starting soon")
	fmt.Println("  announcematches                                 - tell every user how many study partners they have")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserDept := addUserCmd.String("department", "", "The user's department.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	remindCmd := flag.NewFlagSet("remind", flag.ContinueOnError)
	remindWithin := remindCmd.Duration("within", 24*time.Hour, "Remind sessions starting within this duration.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" || *addUserDept == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserName, *addUserDept, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "seedsubjects":
		return cli.seedSubjects()

	case "remind":
		if err := remindCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *remindWithin <= 0 {
			remindCmd.Usage()
			return errHelp
		}
		return cli.remind(*remindWithin)

	case "announcematches":
		return cli.announceMatches()

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	return string(pwd), err
}

// Commands

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return gooseRunFunc(db, args[0], args[1:]...)
}

func (cli *commandLine) addUser(email, name, dept, pwd string) error {
	svcs, err := cli.services()
	if err != nil {
		return err
	}
	usr, err := svcs.Users.Register(context.Background(), user.NewUser{
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Name:            name,
		Department:      dept,
	})
	if err != nil {
		return err
	}
	fmt.Printf("user %s created\n", usr.ID)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	svcs, err := cli.services()
	if err != nil {
		return err
	}
	ctx := context.Background()
	usr, err := svcs.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = svcs.Users.SetPassword(ctx, usr.ID, pwd)
	return err
}

func (cli *commandLine) seedSubjects() error {
	svcs, err := cli.services()
	if err != nil {
		return err
	}
	n, err := svcs.Subjects.Seed(context.Background(), subject.DefaultCatalog)
	if err != nil {
		return err
	}
	fmt.Printf("%d subjects added\n", n)
	return nil
}

func (cli *commandLine) remind(within time.Duration) error {
	svcs, err := cli.services()
	if err != nil {
		return err
	}
	n, err := svcs.Sessions.SendReminders(context.Background(), core.NowFunc(), within)
	if err != nil {
		return err
	}
	fmt.Printf("%d sessions reminded\n", n)
	return nil
}

func (cli *commandLine) announceMatches() error {
	svcs, err := cli.services()
	if err != nil {
		return err
	}
	ctx := context.Background()
	users, err := svcs.Users.QueryAll(ctx)
	if err != nil {
		return err
	}
	var announced int
	for _, usr := range users {
		n, err := svcs.Matches.AnnounceMatches(ctx, usr.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			announced++
		}
	}
	fmt.Printf("%d users notified\n", announced)
	return nil
}
