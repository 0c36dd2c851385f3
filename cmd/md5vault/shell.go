package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vaultsandbox/md5vault"
)

const tableWidth = 71

// prompter reads one answer per line after printing a prompt.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// ask prints the prompt and returns the next line without its line ending.
// It returns io.EOF once input is exhausted.
func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(p.out)
		return "", io.EOF
	}
	return strings.TrimRight(p.in.Text(), "\r"), nil
}

// runShell is the interactive create/login/print loop. It ends when the
// user answers anything but "y" to the continue prompt, or at end of input.
func runShell(store *md5vault.Store, stdin io.Reader, stdout io.Writer) error {
	p := &prompter{in: bufio.NewScanner(stdin), out: stdout}

	for {
		decision, err := p.ask("Would you like to create an account, log in, or print the current database (c/l/d)? ")
		if err != nil {
			return endOfInput(err)
		}

		switch strings.ToLower(decision) {
		case "c":
			err = shellCreate(store, p)
		case "l":
			err = shellLogin(store, p)
		case "d":
			err = shellPrint(store, stdout)
		default:
			fmt.Fprintln(stdout, "Invalid input.")
		}
		if err != nil {
			return endOfInput(err)
		}

		cont, err := p.ask("Would you like to continue (y/n)? ")
		if err != nil {
			return endOfInput(err)
		}
		if strings.ToLower(cont) != "y" {
			return nil
		}
	}
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func shellCreate(store *md5vault.Store, p *prompter) error {
	fmt.Fprintln(p.out, "Great! Let's create your account.")
	username, err := p.ask("Input your username: ")
	if err != nil {
		return err
	}

	if utf8.RuneCountInString(username) > md5vault.DefaultMaxUsernameLength {
		fmt.Fprintf(p.out, "The username is too long (max %d characters).\n", md5vault.DefaultMaxUsernameLength)
		return nil
	}
	exists, err := store.Exists(username)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintln(p.out, "Username already exists. Please retry.")
		return nil
	}

	password, err := p.ask("Enter password: ")
	if err != nil {
		return err
	}
	if err := store.CreateAccount(username, password); err != nil {
		if errors.Is(err, md5vault.ErrEmptyUsername) {
			fmt.Fprintln(p.out, "The username cannot be empty. Please retry.")
			return nil
		}
		return err
	}
	return nil
}

func shellLogin(store *md5vault.Store, p *prompter) error {
	username, err := p.ask("Enter username: ")
	if err != nil {
		return err
	}

	exists, err := store.Exists(username)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintln(p.out, "No account with such username. Please retry.")
		return nil
	}

	password, err := p.ask("Enter password: ")
	if err != nil {
		return err
	}

	ok, err := store.Validate(username, password)
	if errors.Is(err, md5vault.ErrRateLimited) {
		fmt.Fprintln(p.out, "Too many login attempts. Please retry later.")
		return nil
	}
	if err != nil {
		return err
	}

	acct, err := store.Lookup(username)
	if err != nil {
		return err
	}

	fmt.Fprintln(p.out, "True Password hash: "+acct.Digest.String())
	fmt.Fprintln(p.out, "Your inputted password hash: "+md5vault.SumString(password).String())
	if ok {
		fmt.Fprintln(p.out, "Success (hashes match)! Welcome to your account.")
	} else {
		fmt.Fprintln(p.out, "Incorrect password (hashes do NOT match). Please retry.")
	}
	fmt.Fprintln(p.out)
	return nil
}

func shellPrint(store *md5vault.Store, w io.Writer) error {
	empty, err := store.IsEmpty()
	if err != nil {
		return err
	}
	if empty {
		fmt.Fprintln(w, "Empty database.")
		return nil
	}

	accounts, err := store.Accounts()
	if err != nil {
		return err
	}
	printTable(w, accounts)
	return nil
}

// printTable renders accounts as a fixed-width table with usernames
// centered in a 32-character column.
func printTable(w io.Writer, accounts []md5vault.Account) {
	rule := strings.Repeat("-", tableWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "| "+center("USERNAME", 32)+" | "+center("HASH", 32)+" |")
	fmt.Fprintln(w, rule)
	for _, a := range accounts {
		fmt.Fprintln(w, "| "+center(a.Username, 32)+" | "+a.Digest.String()+" |")
	}
	fmt.Fprintln(w, rule)
}

// center pads s to width characters, putting the odd space on the right.
func center(s string, width int) string {
	pad := max(width-utf8.RuneCountInString(s), 0)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
