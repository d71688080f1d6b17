package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"todolist/internal/commands"
	"todolist/internal/config"
	"todolist/internal/exitcode"
	"todolist/internal/identity"
	"todolist/internal/task"
	"todolist/internal/testutil"
)

var testUser = identity.Identity{Name: "Test User", Email: "user@example.com"}

// signedInConfig creates a config dir with a persisted identity, as if the
// user had already run login.
func signedInConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{Dir: t.TempDir()}
	if err := identity.NewStore(cfg.IdentityPath()).Save(testUser); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// runCommand is a helper to run a command against a FakeStore.
func runCommand(t *testing.T, cfg *config.Config, cmd commands.Command, store *testutil.FakeStore, args []string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, store, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// parseFlags feeds flag arguments through the command's flag registration,
// the way the dispatcher does.
func parseFlags(t *testing.T, cmd commands.Command, args ...string) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
}

func seedTask(store *testutil.FakeStore, id, title string, status task.Status, due time.Time) {
	store.SeedTask(testUser.Email, task.Task{
		ID:      id,
		Title:   title,
		Status:  status,
		DueDate: due,
	})
}

var due = time.Date(2020, 5, 20, 10, 30, 0, 0, time.UTC)

// Tests for the registry
func TestRegistry(t *testing.T) {
	reg := commands.NewRegistry()

	if err := reg.Register(&commands.RmCmd{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Find("rm"); !ok {
		t.Error("expected to find command by name")
	}
	if _, ok := reg.Find("remove"); !ok {
		t.Error("expected to find command by alias")
	}
	if _, ok := reg.Find("nope"); ok {
		t.Error("found a command that was never registered")
	}

	if err := reg.Register(&commands.RmCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	if err := reg.Register(&commands.DoneCmd{}); err != nil {
		t.Fatal(err)
	}
	all := reg.All()
	if len(all) != 2 || all[0].Name() != "done" || all[1].Name() != "rm" {
		t.Errorf("expected [done rm] sorted by primary name, got %v", all)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &config.Config{Dir: t.TempDir()}, &commands.VersionCmd{}, nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todolist 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &config.Config{Dir: t.TempDir()}, &commands.HelpCmd{}, nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
	for _, name := range []string{"list", "add", "done", "rm", "login", "logout", "whoami"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("help output should mention %q", name)
		}
	}
	testutil.GoldenString(t, "help", stdout)
}

// Tests for whoami command
func TestWhoamiCommand_SignedIn(t *testing.T) {
	stdout, _, code := runCommand(t, signedInConfig(t), &commands.WhoamiCmd{}, nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "Test User <user@example.com>\n" {
		t.Errorf("unexpected whoami output: %q", stdout)
	}
}

func TestWhoamiCommand_SignedOut(t *testing.T) {
	stdout, _, code := runCommand(t, &config.Config{Dir: t.TempDir()}, &commands.WhoamiCmd{}, nil, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not signed in\n" {
		t.Errorf("unexpected whoami output: %q", stdout)
	}
}

// Tests for list command
func TestListCommand(t *testing.T) {
	store := testutil.NewFakeStore()
	seedTask(store, "1", "Buy milk", task.StatusPending, due)
	seedTask(store, "2", "Pay rent", task.StatusDone, due)

	stdout, stderr, code := runCommand(t, signedInConfig(t), &commands.ListCmd{}, store, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}

	expected := "   1  [ ]  2020-05-20 10:30  Buy milk\n   2  [x]  2020-05-20 10:30  Pay rent\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, signedInConfig(t), &commands.ListCmd{}, testutil.NewFakeStore(), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestListCommand_NotSignedIn(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	_, stderr, code := runCommand(t, cfg, &commands.ListCmd{}, testutil.NewFakeStore(), nil)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "not signed in") {
		t.Errorf("expected sign-in hint, got %q", stderr)
	}
}

func TestListCommand_FetchFailure(t *testing.T) {
	store := testutil.NewFakeStore()
	store.FetchAllErr = errors.New("backend unavailable")

	_, stderr, code := runCommand(t, signedInConfig(t), &commands.ListCmd{}, store, nil)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "backend unavailable") {
		t.Errorf("expected fetch error, got %q", stderr)
	}
}

func TestListCommand_FilterByStatus(t *testing.T) {
	store := testutil.NewFakeStore()
	seedTask(store, "1", "Buy milk", task.StatusPending, due)
	seedTask(store, "2", "Pay rent", task.StatusDone, due)

	cmd := &commands.ListCmd{}
	parseFlags(t, cmd, "-status", "done")
	stdout, _, code := runCommand(t, signedInConfig(t), cmd, store, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  [x]  2020-05-20 10:30  Pay rent\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_UnknownStatus(t *testing.T) {
	cmd := &commands.ListCmd{}
	parseFlags(t, cmd, "-status", "archived")
	_, stderr, code := runCommand(t, signedInConfig(t), cmd, testutil.NewFakeStore(), nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "unknown status") {
		t.Errorf("expected unknown status error, got %q", stderr)
	}
}

func TestListCommand_StatusAndDueConflict(t *testing.T) {
	cmd := &commands.ListCmd{}
	parseFlags(t, cmd, "-status", "done", "-due", "2020-05-20")
	_, stderr, code := runCommand(t, signedInConfig(t), cmd, testutil.NewFakeStore(), nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "cannot use both") {
		t.Errorf("expected conflict error, got %q", stderr)
	}
}

func TestListCommand_Search(t *testing.T) {
	store := testutil.NewFakeStore()
	seedTask(store, "1", "Buy milk", task.StatusPending, due)
	seedTask(store, "2", "Pay RENT", task.StatusPending, due)

	cmd := &commands.ListCmd{}
	parseFlags(t, cmd, "-search", "rent")
	stdout, _, code := runCommand(t, signedInConfig(t), cmd, store, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  [ ]  2020-05-20 10:30  Pay RENT\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Expanded(t *testing.T) {
	store := testutil.NewFakeStore()
	store.SeedTask(testUser.Email, task.Task{
		ID: "1", Title: "Buy milk", Description: "Two liters",
		Status: task.StatusPending, DueDate: due,
	})

	cmd := &commands.ListCmd{}
	parseFlags(t, cmd, "-expanded")
	stdout, _, code := runCommand(t, signedInConfig(t), cmd, store, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  [ ]  2020-05-20 10:30  Buy milk\n      Two liters\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	store := testutil.NewFakeStore()

	cmd := &commands.AddCmd{}
	parseFlags(t, cmd, "-due", "2020-05-20T10:30:00Z")
	stdout, stderr, code := runCommand(t, signedInConfig(t), cmd, store, []string{"Buy", "milk"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d: %s", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}

	saved := store.Tasks(testUser.Email)
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved task, got %d", len(saved))
	}
	if saved[0].Title != "Buy milk" {
		t.Errorf("expected joined title, got %q", saved[0].Title)
	}
	if saved[0].Status != task.StatusPending {
		t.Errorf("new task should be pending, got %q", saved[0].Status)
	}
	if !saved[0].DueDate.Equal(due) {
		t.Errorf("unexpected due date: %v", saved[0].DueDate)
	}
}

func TestAddCommand_TitleRequired(t *testing.T) {
	_, stderr, code := runCommand(t, signedInConfig(t), &commands.AddCmd{}, testutil.NewFakeStore(), nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "title required") {
		t.Errorf("expected title error, got %q", stderr)
	}
}

func TestAddCommand_InvalidDue(t *testing.T) {
	cmd := &commands.AddCmd{}
	parseFlags(t, cmd, "-due", "tomorrow")
	_, stderr, code := runCommand(t, signedInConfig(t), cmd, testutil.NewFakeStore(), []string{"Buy milk"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "invalid due date") {
		t.Errorf("expected due date error, got %q", stderr)
	}
}

func TestAddCommand_WriteFailure(t *testing.T) {
	store := testutil.NewFakeStore()
	store.SaveErr = errors.New("backend unavailable")

	_, stderr, code := runCommand(t, signedInConfig(t), &commands.AddCmd{}, store, []string{"Buy milk"})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "backend unavailable") {
		t.Errorf("expected backend error, got %q", stderr)
	}
}

// Tests for done command
func TestDoneCommand(t *testing.T) {
	store := testutil.NewFakeStore()
	seedTask(store, "1", "Buy milk", task.StatusPending, due)

	stdout, stderr, code := runCommand(t, signedInConfig(t), &commands.DoneCmd{}, store, []string{"1"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d: %s", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}

	saved := store.Tasks(testUser.Email)
	if len(saved) != 1 || saved[0].Status != task.StatusDone {
		t.Errorf("expected task toggled to done, got %+v", saved)
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	store := testutil.NewFakeStore()
	seedTask(store, "1", "Buy milk", task.StatusPending, due)

	_, stderr, code := runCommand(t, signedInConfig(t), &commands.DoneCmd{}, store, []string{"5"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "out of range") {
		t.Errorf("expected out of range error, got %q", stderr)
	}
}

func TestDoneCommand_InvalidNumber(t *testing.T) {
	for _, arg := range []string{"zero", "0", "-3"} {
		_, stderr, code := runCommand(t, signedInConfig(t), &commands.DoneCmd{}, testutil.NewFakeStore(), []string{arg})

		if code != exitcode.UserError {
			t.Errorf("%s: expected exit code %d, got %d", arg, exitcode.UserError, code)
		}
		if !strings.Contains(stderr, "invalid task number") {
			t.Errorf("%s: expected invalid number error, got %q", arg, stderr)
		}
	}
}

func TestDoneCommand_MissingNumber(t *testing.T) {
	_, stderr, code := runCommand(t, signedInConfig(t), &commands.DoneCmd{}, testutil.NewFakeStore(), nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "task number required") {
		t.Errorf("expected missing number error, got %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	store := testutil.NewFakeStore()
	seedTask(store, "1", "Buy milk", task.StatusPending, due)
	seedTask(store, "2", "Pay rent", task.StatusPending, due)

	stdout, stderr, code := runCommand(t, signedInConfig(t), &commands.RmCmd{}, store, []string{"1"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d: %s", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected ok, got %q", stdout)
	}

	saved := store.Tasks(testUser.Email)
	if len(saved) != 1 || saved[0].ID != "2" {
		t.Errorf("expected task 1 removed, got %+v", saved)
	}
}

func TestRmCommand_OutOfRange(t *testing.T) {
	_, stderr, code := runCommand(t, signedInConfig(t), &commands.RmCmd{}, testutil.NewFakeStore(), []string{"1"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "out of range") {
		t.Errorf("expected out of range error, got %q", stderr)
	}
}

func TestQuietSuppressesOK(t *testing.T) {
	store := testutil.NewFakeStore()
	cfg := signedInConfig(t)
	cfg.Quiet = true

	stdout, _, code := runCommand(t, cfg, &commands.AddCmd{}, store, []string{"Buy milk"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output with -quiet, got %q", stdout)
	}
}
