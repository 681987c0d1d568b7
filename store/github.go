package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/stsysd/bathtiles/heatmap"
	"github.com/stsysd/bathtiles/model"
)

// GitHubの開始日。これより前のコントリビューションは存在しない
var githubLaunch = time.Date(2008, 4, 10, 0, 0, 0, 0, time.UTC)

// GraphQLClient はGitHub GraphQL APIを呼び出すクライアントです。
// go-ghの *api.GraphQLClient が満たします。
type GraphQLClient interface {
	DoWithContext(ctx context.Context, query string, variables map[string]interface{}, response interface{}) error
}

// ErrGitHubUserNotFound は指定されたGitHubユーザーが存在しない場合のエラーです。
var ErrGitHubUserNotFound = errors.New("github user not found")

// GitHubSource はGitHubのコントリビューションカレンダーを読み込むSourceです。
// 各日はその日のUTC 0時のエポック秒に対応付けます。
type GitHubSource struct {
	Login  string        // 空の場合は認証中のユーザー
	From   time.Time     // 期間の開始
	To     time.Time     // 期間の終了（開始から1年以内）
	Client GraphQLClient // nilの場合は api.DefaultGraphQLClient
}

type contributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
}

type contributionCalendar struct {
	Weeks []struct {
		ContributionDays []contributionDay `json:"contributionDays"`
	} `json:"weeks"`
}

type contributionsCollection struct {
	ContributionsCollection struct {
		ContributionCalendar contributionCalendar `json:"contributionCalendar"`
	} `json:"contributionsCollection"`
}

const userContributionsQuery = `
query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

const viewerContributionsQuery = `
query($from: DateTime!, $to: DateTime!) {
  viewer {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

// Load はコントリビューションカレンダーをエンコード済みのペイロードとして返します。
func (s *GitHubSource) Load(ctx context.Context) ([]byte, error) {
	counts, err := s.LoadCounts(ctx)
	if err != nil {
		return nil, err
	}
	return heatmap.EncodePayload(counts)
}

// LoadCounts はコントリビューションをエポック秒ごとの件数として返します。
func (s *GitHubSource) LoadCounts(ctx context.Context) (map[int64]int, error) {
	if err := validateGitHubRange(s.From, s.To); err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		c, err := api.DefaultGraphQLClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		client = c
	}

	vars := map[string]interface{}{
		"from": s.From.UTC(),
		"to":   s.To.UTC(),
	}

	var cal contributionCalendar
	if s.Login == "" {
		var resp struct {
			Viewer contributionsCollection `json:"viewer"`
		}
		if err := client.DoWithContext(ctx, viewerContributionsQuery, vars, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch contributions: %w", err)
		}
		cal = resp.Viewer.ContributionsCollection.ContributionCalendar
	} else {
		vars["login"] = s.Login
		var resp struct {
			User *contributionsCollection `json:"user"`
		}
		if err := client.DoWithContext(ctx, userContributionsQuery, vars, &resp); err != nil {
			if strings.Contains(err.Error(), "Could not resolve to a User") {
				return nil, fmt.Errorf("%w: %s", ErrGitHubUserNotFound, s.Login)
			}
			return nil, fmt.Errorf("failed to fetch contributions: %w", err)
		}
		if resp.User == nil {
			return nil, fmt.Errorf("%w: %s", ErrGitHubUserNotFound, s.Login)
		}
		cal = resp.User.ContributionsCollection.ContributionCalendar
	}

	counts := make(map[int64]int)
	for _, w := range cal.Weeks {
		for _, d := range w.ContributionDays {
			key, err := model.ParseDayKey(d.Date)
			if err != nil {
				return nil, model.NewMalformedInputError(d.Date, "unexpected contribution date", err)
			}
			t, err := key.Time()
			if err != nil {
				return nil, err
			}
			counts[t.Unix()] = d.ContributionCount
		}
	}
	return counts, nil
}

// validateGitHubRange はGraphQL APIの期間制約（1年以内、GitHub開始日以降）を検証します。
func validateGitHubRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return model.NewInvalidConfigurationError("range", "from and to must be set")
	}
	if from.After(to) {
		return model.NewInvalidConfigurationError("range", "from must not be after to")
	}
	if from.Before(githubLaunch) {
		return model.NewInvalidConfigurationError("range", "must be on or after 2008-04-10")
	}
	// うるう年を考慮して366日まで許容
	if to.Sub(from) > 366*24*time.Hour {
		return model.NewInvalidConfigurationError("range", "must not exceed one year")
	}
	return nil
}
