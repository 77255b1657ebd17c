package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/tada/internal/model"
)

// fakeAPI is an in-memory item server for one tenant.
type fakeAPI struct {
	mu      sync.Mutex
	next    int
	items   map[int]*model.Item
	order   []int
	uploads int
	failOn  map[int]bool
}

func newFakeAPI(t *testing.T, items ...model.Item) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{next: 100, items: map[int]*model.Item{}, failOn: map[int]bool{}}
	for i := range items {
		it := items[i]
		f.items[it.ID] = &it
		f.order = append(f.order, it.ID)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/t1/items", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []model.Item{}
		for _, id := range f.order {
			if it, ok := f.items[id]; ok {
				out = append(out, *it)
			}
		}
		reply(w, http.StatusOK, out)
	})
	mux.HandleFunc("POST /api/t1/items", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Name string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.next++
		it := &model.Item{ID: f.next, Name: body.Name}
		f.items[it.ID] = it
		f.order = append(f.order, it.ID)
		reply(w, http.StatusCreated, it)
	})
	mux.HandleFunc("/api/t1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		f.mu.Lock()
		defer f.mu.Unlock()
		it, ok := f.items[id]
		if !ok || f.failOn[id] {
			reply(w, http.StatusNotFound, map[string]string{"message": "not found"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			reply(w, http.StatusOK, it)
		case http.MethodPatch:
			var p model.ItemPatch
			_ = json.NewDecoder(r.Body).Decode(&p)
			if p.Name != nil {
				it.Name = *p.Name
			}
			if p.Memo != nil {
				it.Memo = *p.Memo
			}
			if p.ImageURL != nil {
				it.ImageURL = *p.ImageURL
			}
			if p.IsCompleted != nil {
				it.IsCompleted = *p.IsCompleted
			}
			reply(w, http.StatusOK, it)
		case http.MethodDelete:
			delete(f.items, id)
			reply(w, http.StatusOK, map[string]string{"message": "deleted"})
		}
	})
	mux.HandleFunc("POST /api/t1/images/upload", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.uploads++
		f.mu.Unlock()
		reply(w, http.StatusCreated, map[string]string{"url": "https://cdn.example/x.png"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) get(id int) (model.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return model.Item{}, false
	}
	return *it, true
}

// runCLI executes the root command against srv and returns stdout, stderr
// (ANSI stripped) and the exit code.
func runCLI(t *testing.T, srv *httptest.Server, args ...string) (string, string, int) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TADA_HOME", home)
	for _, k := range []string{"TADA_CONFIG", "TADA_BASE_URL", "TADA_TENANT", "TADA_THEME", "TADA_LANG", "TADA_LOG_LEVEL", "TADA_LOG_FILE", "TADA_FORMAT"} {
		t.Setenv(k, "")
	}

	app := &App{}
	cmd := newRootCmd(app)
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	base := []string{"--base-url", srv.URL, "--tenant", "t1", "--theme", "mono"}
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	if err != nil && !Reported(err) {
		writeErr(&errb, app, err)
	}
	return ansi.Strip(out.String()), ansi.Strip(errb.String()), ExitCode(err)
}

func TestLs_GroupsByCompletion(t *testing.T) {
	_, srv := newFakeAPI(t,
		model.Item{ID: 1, Name: "milk"},
		model.Item{ID: 2, Name: "eggs", IsCompleted: true},
	)
	out, errOut, code := runCLI(t, srv, "ls", "--group")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	// Pending on the left, completed on the right, headings on one row.
	var heads, first string
	for i, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "To do") {
			heads = line
			first = strings.Split(out, "\n")[i+1]
			break
		}
	}
	todo, done := strings.Index(heads, "To do"), strings.Index(heads, "Done")
	if todo < 0 || done < todo {
		t.Fatalf("expected To do and Done side by side:\n%s", out)
	}
	milk, eggs := strings.Index(first, "milk"), strings.Index(first, "eggs")
	if milk < 0 || eggs < milk {
		t.Fatalf("milk should sit under To do and eggs under Done:\n%s", out)
	}
}

func TestLs_JSON(t *testing.T) {
	_, srv := newFakeAPI(t, model.Item{ID: 1, Name: "milk"})
	out, _, code := runCLI(t, srv, "--format", "json", "ls")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	var items []model.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(items) != 1 || items[0].Name != "milk" {
		t.Fatalf("items = %+v", items)
	}
}

func TestAdd_TrimsAndCreates(t *testing.T) {
	f, srv := newFakeAPI(t)
	out, _, code := runCLI(t, srv, "add", " buy", "milk ")
	if code != 0 || !strings.Contains(out, "added #101 buy milk") {
		t.Fatalf("exit %d, out %q", code, out)
	}
	if it, ok := f.get(101); !ok || it.Name != "buy milk" {
		t.Fatalf("server item = %+v", it)
	}
}

func TestAdd_BlankIsUsageError(t *testing.T) {
	_, srv := newFakeAPI(t)
	_, errOut, code := runCLI(t, srv, "add", "  ")
	if code != 2 || !strings.Contains(errOut, "empty name") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestDone_TogglesEachIDAndReportsFailures(t *testing.T) {
	f, srv := newFakeAPI(t,
		model.Item{ID: 1, Name: "a"},
		model.Item{ID: 2, Name: "b", IsCompleted: true},
	)
	out, errOut, code := runCLI(t, srv, "done", "1", "2", "9")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if a, _ := f.get(1); !a.IsCompleted {
		t.Fatalf("item 1 not toggled")
	}
	if b, _ := f.get(2); b.IsCompleted {
		t.Fatalf("item 2 not toggled")
	}
	if !strings.Contains(out, "#1 a → done") || !strings.Contains(out, "#2 b → pending") {
		t.Fatalf("stdout %q", out)
	}
	if !strings.Contains(errOut, "#9") {
		t.Fatalf("stderr should name the failed id: %q", errOut)
	}
}

func TestDone_RepeatedIDTogglesOnce(t *testing.T) {
	f, srv := newFakeAPI(t, model.Item{ID: 5, Name: "a"})
	out, errOut, code := runCLI(t, srv, "done", "5", "5", "05")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if it, _ := f.get(5); !it.IsCompleted {
		t.Fatalf("item 5 should end up done, got %+v", it)
	}
	if n := strings.Count(out, "#5 a"); n != 1 {
		t.Fatalf("want one report line for #5, got %d:\n%s", n, out)
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("done", []string{"3", "1", "3", "2", "1"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{3, 1, 2}; !slices.Equal(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	if _, err := parseIDs("rm", []string{"1", "-2"}); ExitCode(err) != 2 {
		t.Fatalf("negative id: err = %v", err)
	}
}

func TestDone_NonNumericIsUsageError(t *testing.T) {
	_, srv := newFakeAPI(t)
	_, errOut, code := runCLI(t, srv, "done", "x")
	if code != 2 || !strings.Contains(errOut, "not an item id: x") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestRm(t *testing.T) {
	f, srv := newFakeAPI(t, model.Item{ID: 1, Name: "a"}, model.Item{ID: 2, Name: "b"})
	_, _, code := runCLI(t, srv, "rm", "1", "2")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if _, ok := f.get(1); ok {
		t.Fatalf("item 1 still present")
	}
	if _, ok := f.get(2); ok {
		t.Fatalf("item 2 still present")
	}
}

func TestEdit_UploadsThenPatches(t *testing.T) {
	f, srv := newFakeAPI(t, model.Item{ID: 1, Name: "a"})
	img := filepath.Join(t.TempDir(), "receipt.png")
	if err := os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, errOut, code := runCLI(t, srv, "edit", "1", "--memo", "**2L**", "--done", "--image", img)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	it, _ := f.get(1)
	if it.Memo != "**2L**" || !it.IsCompleted || it.ImageURL != "https://cdn.example/x.png" || it.Name != "a" {
		t.Fatalf("server item = %+v", it)
	}
	if !strings.Contains(out, "2L") {
		t.Fatalf("memo not rendered: %q", out)
	}
}

func TestEdit_RejectsBadImageBeforeAnyRequest(t *testing.T) {
	f, srv := newFakeAPI(t, model.Item{ID: 1, Name: "a"})
	img := filepath.Join(t.TempDir(), "my photo.png")
	if err := os.WriteFile(img, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, errOut, code := runCLI(t, srv, "edit", "1", "--memo", "m", "--image", img)
	if code != 1 || !strings.Contains(errOut, "English letters") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if it, _ := f.get(1); it.Memo != "" || f.uploads != 0 {
		t.Fatalf("request sent: item %+v uploads %d", it, f.uploads)
	}
}

func TestEdit_NothingToChange(t *testing.T) {
	_, srv := newFakeAPI(t, model.Item{ID: 1, Name: "a"})
	if _, _, code := runCLI(t, srv, "edit", "1"); code != 2 {
		t.Fatalf("exit %d, want 2", code)
	}
}

func TestShow_NotFoundIsFetchFailure(t *testing.T) {
	_, srv := newFakeAPI(t)
	_, errOut, code := runCLI(t, srv, "show", "5")
	if code != 1 || !strings.Contains(errOut, "404") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}

func TestBadFormatIsUsageError(t *testing.T) {
	_, srv := newFakeAPI(t)
	if _, _, code := runCLI(t, srv, "--format", "yaml", "ls"); code != 2 {
		t.Fatalf("exit %d, want 2", code)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 || ExitCode(usageErr("x")) != 2 || ExitCode(os.ErrNotExist) != 1 {
		t.Fatalf("unexpected exit code mapping")
	}
}
