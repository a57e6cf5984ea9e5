package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/usersearch/internal/normalize"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"usersearchctl"}, args...))
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	out, err := run(t, "normalize", "Please", "show", "the", "ladies", "w/", "pics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := normalize.Normalize("Please show the ladies w/ pics")
	if got := strings.TrimSpace(out); got != want {
		t.Errorf("normalize output = %q, want %q", got, want)
	}
	if !strings.Contains(want, "female users") || !strings.Contains(want, "pictures") {
		t.Errorf("unexpected normalized form %q", want)
	}
}

func TestNormalizeCommand_MissingQuery(t *testing.T) {
	if _, err := run(t, "normalize"); err == nil {
		t.Fatal("expected error without a query")
	}
}

func TestDetectCommand(t *testing.T) {
	out, err := run(t, "detect", "female users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got struct {
		Found   bool `json:"found"`
		Filters struct {
			Gender *string `json:"gender"`
		} `json:"filters"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if !got.Found || got.Filters.Gender == nil || *got.Filters.Gender != "Female" {
		t.Errorf("unexpected detection: %s", out)
	}
}

func TestReadSeed(t *testing.T) {
	in := `[
		{"full_name": "Anna Smith", "username": "anna", "gender": "Female", "profile_pic": "/img/1.png"},
		{"full_name": "Bob Stone", "username": "bob", "gender": "Male", "profile_pic": null}
	]`
	records, err := readSeed(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 || records[0].ProfilePic == nil || records[1].ProfilePic != nil {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestReadSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{`},
		{"missing username", `[{"full_name": "Anna", "gender": "Female"}]`},
		{"bad gender", `[{"full_name": "Anna", "username": "a", "gender": "female"}]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := readSeed(strings.NewReader(tc.in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
