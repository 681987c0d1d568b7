package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stsysd/bathtiles/model"
)

// fakeGraphQLClient は固定のJSONレスポンスを返すGraphQLClientです。
type fakeGraphQLClient struct {
	response string
	err      error
	query    string
	vars     map[string]interface{}
}

func (f *fakeGraphQLClient) DoWithContext(ctx context.Context, query string, variables map[string]interface{}, response interface{}) error {
	f.query = query
	f.vars = variables
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), response)
}

const testContributions = `{
  "weeks": [
    {"contributionDays": [
      {"date": "2021-01-01", "contributionCount": 3},
      {"date": "2021-01-02", "contributionCount": 0}
    ]},
    {"contributionDays": [
      {"date": "2021-01-03", "contributionCount": 7}
    ]}
  ]
}`

func TestGitHubSource_LoadUser(t *testing.T) {
	client := &fakeGraphQLClient{
		response: `{"user": {"contributionsCollection": {"contributionCalendar": ` + testContributions + `}}}`,
	}
	src := &GitHubSource{
		Login:  "octocat",
		From:   time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC),
		Client: client,
	}

	counts, err := src.LoadCounts(context.Background())
	if err != nil {
		t.Fatalf("LoadCounts failed: %v", err)
	}
	want := map[int64]int{1609459200: 3, 1609545600: 0, 1609632000: 7}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if client.vars["login"] != "octocat" {
		t.Errorf("Expected login variable, got %v", client.vars["login"])
	}
	if !strings.Contains(client.query, "user(login: $login)") {
		t.Errorf("Expected user query, got %s", client.query)
	}
}

func TestGitHubSource_LoadViewer(t *testing.T) {
	client := &fakeGraphQLClient{
		response: `{"viewer": {"contributionsCollection": {"contributionCalendar": ` + testContributions + `}}}`,
	}
	src := &GitHubSource{
		From:   time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		Client: client,
	}

	payload, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.Contains(client.query, "viewer") {
		t.Errorf("Expected viewer query, got %s", client.query)
	}
	if _, ok := client.vars["login"]; ok {
		t.Error("viewer query must not send a login")
	}
	if !strings.Contains(string(payload), "submissionCalendar") {
		t.Errorf("unexpected payload: %s", payload)
	}
}

func TestGitHubSource_Errors(t *testing.T) {
	from := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		src   *GitHubSource
		check func(error) bool
	}{
		{
			name:  "missing range",
			src:   &GitHubSource{Login: "octocat", Client: &fakeGraphQLClient{}},
			check: model.IsInvalidConfiguration,
		},
		{
			name:  "range over a year",
			src:   &GitHubSource{Login: "octocat", From: from, To: from.AddDate(1, 1, 0), Client: &fakeGraphQLClient{}},
			check: model.IsInvalidConfiguration,
		},
		{
			name:  "before launch",
			src:   &GitHubSource{Login: "octocat", From: time.Date(2008, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2008, 6, 1, 0, 0, 0, 0, time.UTC), Client: &fakeGraphQLClient{}},
			check: model.IsInvalidConfiguration,
		},
		{
			name: "unknown user",
			src: &GitHubSource{Login: "nobody", From: from, To: to, Client: &fakeGraphQLClient{
				err: errors.New("GraphQL: Could not resolve to a User with the login of 'nobody'. (user)"),
			}},
			check: func(err error) bool { return errors.Is(err, ErrGitHubUserNotFound) },
		},
		{
			name:  "null user",
			src:   &GitHubSource{Login: "nobody", From: from, To: to, Client: &fakeGraphQLClient{response: `{"user": null}`}},
			check: func(err error) bool { return errors.Is(err, ErrGitHubUserNotFound) },
		},
		{
			name: "bad date",
			src: &GitHubSource{Login: "octocat", From: from, To: to, Client: &fakeGraphQLClient{
				response: `{"user": {"contributionsCollection": {"contributionCalendar": {"weeks": [{"contributionDays": [{"date": "01/01/2021", "contributionCount": 1}]}]}}}}`,
			}},
			check: model.IsMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.src.LoadCounts(context.Background())
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
