package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	// Embed zone data so DISPLAY_TZ works on hosts without it
	_ "time/tzdata"

	"household-expenses/internal/config"
	"household-expenses/internal/expenses"
	"household-expenses/internal/models"
	"household-expenses/internal/session"
	"household-expenses/internal/storage"
	"household-expenses/internal/transport"
	"household-expenses/internal/users"

	"golang.org/x/term"
)

const usage = `Usage: haushalt [-api <url>] [-db <session_db>] <command> [flags]

Commands:
  login     log in and remember the session
  logout    forget the session
  whoami    show the logged-in user
  register  create a user
  add       submit an expense
  list      list your expenses
  update    change fields of an expense
  delete    delete an expense
`

var errNotLoggedIn = errors.New("not logged in")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the services one invocation works with.
type app struct {
	expenses *expenses.Service
	users    *users.Service
	session  *session.Store
	location *time.Location

	stdin          io.Reader
	stdout, stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("haushalt", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	apiURL := fs.String("api", "", "Backend base URL (default $HAUSHALT_API_URL)")
	dbPath := fs.String("db", "", "Path to session database (default $SESSION_DB)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Flags win over the environment
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *dbPath != "" {
		cfg.SessionDB = *dbPath
	}

	db, err := storage.NewDB(cfg.SessionDB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	client := transport.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	userService := users.NewService(client)
	store := session.NewStore(userService, db)
	if err := store.Load(); err != nil {
		return err
	}

	a := &app{
		expenses: expenses.NewService(client, cfg.Location),
		users:    userService,
		session:  store,
		location: cfg.Location,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}

	ctx := context.Background()
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami()
	case "register":
		return a.register(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "update":
		return a.update(ctx, rest)
	case "delete":
		return a.remove(ctx, rest)
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// visited returns the names of the flags given on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func (a *app) password(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	fmt.Fprint(a.stdout, "Password: ")
	password, err := readPassword(a.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(a.stdout) // Print newline after password input
	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

func (a *app) currentUser() (models.Identity, error) {
	id, ok := a.session.Current()
	if !ok || id.ID <= 0 {
		return models.Identity{}, fmt.Errorf("%w, run 'haushalt login' first", errNotLoggedIn)
	}
	return id, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flagSet("login")
	identifier := fs.String("user", "", "Email or name")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *identifier == "" {
		fmt.Fprintln(a.stdout, "Usage: haushalt login -user <email> [-password <password>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}

	password, err := a.password(*passwordFlag)
	if err != nil {
		return err
	}

	id, err := a.session.Login(ctx, *identifier, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in as %s (ID %d)\n", id.Name, id.ID)
	return nil
}

func (a *app) logout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Logged out")
	return nil
}

func (a *app) whoami() error {
	id, err := a.currentUser()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s <%s> (ID %d)\n", id.Name, id.Email, id.ID)

	saved, err := a.session.SavedAt()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Logged in since %s\n", saved.In(a.location).Format("02.01.2006 15:04"))
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flagSet("register")
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	income := fs.Float64("income", 0, "Monthly income")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		fmt.Fprintln(a.stdout, "Usage: haushalt register -name <name> -email <email> [-password <password>] [-income <amount>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}

	password, err := a.password(*passwordFlag)
	if err != nil {
		return err
	}

	u, err := a.users.Register(ctx, models.User{Name: *name, Email: *email, Password: password, Income: float32(*income)})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "User %s registered with ID %d\n", u.Name, u.ID)
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	total := fs.Float64("total", 0, "Total value")
	category := fs.String("category", "", "credit, monthlycosts or allelse")
	description := fs.String("description", "", "Description")
	dueDay := fs.String("due-day", "", "Day of month the payment is due")
	creditStart := fs.String("credit-start", "", "First month of a credit (YYYY-MM-DD or DD.MM.YYYY)")
	creditEnd := fs.String("credit-end", "", "Last month of a credit (YYYY-MM-DD or DD.MM.YYYY)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.currentUser()
	if err != nil {
		return err
	}

	set := visited(fs)
	record := models.ExpenseRecord{
		OwnerID:  id.ID,
		Category: models.Category(*category),
	}
	if set["total"] {
		record.TotalValue = total
	}
	if set["description"] {
		record.Description = description
	}
	if set["due-day"] {
		record.DueDay = dueDay
	}
	if set["credit-start"] {
		record.CreditStart = creditStart
	}
	if set["credit-end"] {
		record.CreditEnd = creditEnd
	}

	stored, err := a.expenses.SubmitExpense(ctx, record)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Expense %d saved\n", stored.ID)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	month := fs.String("month", "", "Only expenses that apply to this month (YYYY-MM)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := a.currentUser()
	if err != nil {
		return err
	}

	var records []models.DisplayRecord
	if *month != "" {
		records, err = a.expenses.ListByUserAndMonth(ctx, id.ID, *month)
	} else {
		records, err = a.expenses.ListExpenses(ctx, id.ID)
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(a.stdout, "No expenses")
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tDESCRIPTION\tTOTAL\tDUE\tCREDIT START\tCREDIT END")
	for _, r := range records {
		due := r.DueDate
		if due == "" {
			due = r.DueDay
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			r.ID, r.Category, r.Description, r.TotalValue, due, r.CreditStart, r.CreditEnd)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if *month != "" {
		return printSummary(a.stdout, *month, expenses.Summarize(records))
	}
	return nil
}

func printSummary(out io.Writer, month string, sum expenses.Summary) error {
	fmt.Fprintf(out, "\nTotal for %s: %.2f\n", month, sum.Total)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range sum.Categories {
		fmt.Fprintf(w, "%s\t%.2f\t%d\t%.1f%%\n", c.Category, c.Total, c.Count, c.Percentage)
	}
	return w.Flush()
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := a.flagSet("update")
	id := fs.Int("id", 0, "Expense ID")
	total := fs.Float64("total", 0, "Total value")
	category := fs.String("category", "", "credit, monthlycosts or allelse")
	description := fs.String("description", "", "Description (empty clears it)")
	dueDay := fs.String("due-day", "", "Day of month the payment is due")
	creditStart := fs.String("credit-start", "", "First month of a credit")
	creditEnd := fs.String("credit-end", "", "Last month of a credit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.currentUser(); err != nil {
		return err
	}

	set := visited(fs)
	var patch models.ExpensePatch
	if set["total"] {
		patch.TotalValue = total
	}
	if set["category"] {
		c := models.Category(*category)
		patch.Category = &c
	}
	if set["description"] {
		patch.Description = description
	}
	if set["due-day"] {
		patch.DueDay = dueDay
	}
	if set["credit-start"] {
		patch.CreditStart = creditStart
	}
	if set["credit-end"] {
		patch.CreditEnd = creditEnd
	}

	if err := a.expenses.UpdateExpense(ctx, *id, patch); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Expense %d updated\n", *id)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	id := fs.Int("id", 0, "Expense ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.currentUser(); err != nil {
		return err
	}

	if err := a.expenses.DeleteExpense(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Expense %d deleted\n", *id)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
