package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// fakeGmailClient serves messages.list from a local HTTP server and returns
// a Client pointed at it, recording every request's query parameters.
func fakeGmailClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(ts.URL),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	return NewClient(svc)
}

type listPage struct {
	Messages      []*gmail.Message `json:"messages"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

// TestSearchMessagesForwardsQueryVerbatim asserts the Gmail query string
// reaches the API exactly as the caller supplied it, that page size is
// capped at 100 per request, and that results are trimmed to maxResults.
func TestSearchMessagesForwardsQueryVerbatim(t *testing.T) {
	const query = "from:bank is:unread"

	var queries, pageSizes, pageTokens []string
	page := 0
	client := fakeGmailClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/users/me/messages") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		params := r.URL.Query()
		queries = append(queries, params.Get("q"))
		pageSizes = append(pageSizes, params.Get("maxResults"))
		pageTokens = append(pageTokens, params.Get("pageToken"))

		page++
		resp := listPage{}
		// The last page deliberately overshoots what the caller still
		// needs, to exercise the exact trim.
		count := 100
		if page == 3 {
			count = 60
		} else {
			resp.NextPageToken = fmt.Sprintf("page-%d", page+1)
		}
		for i := 0; i < count; i++ {
			resp.Messages = append(resp.Messages, &gmail.Message{Id: fmt.Sprintf("m%d-%d", page, i)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	ids, err := client.SearchMessages(query, 250)
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}

	if len(ids) != 250 {
		t.Errorf("got %d ids, want exactly 250", len(ids))
	}
	if page != 3 {
		t.Errorf("made %d requests, want 3", page)
	}
	for i, q := range queries {
		if q != query {
			t.Errorf("request %d forwarded query %q, want %q", i, q, query)
		}
	}
	wantSizes := []string{"100", "100", "50"}
	for i, size := range pageSizes {
		if size != wantSizes[i] {
			t.Errorf("request %d page size = %q, want %q", i, size, wantSizes[i])
		}
	}
	wantTokens := []string{"", "page-2", "page-3"}
	for i, tok := range pageTokens {
		if tok != wantTokens[i] {
			t.Errorf("request %d page token = %q, want %q", i, tok, wantTokens[i])
		}
	}
	if ids[0] != "m1-0" || ids[249] != "m3-49" {
		t.Errorf("ids not in page order: first %q, last %q", ids[0], ids[249])
	}
}

func TestSearchMessagesSinglePage(t *testing.T) {
	client := fakeGmailClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(listPage{
			Messages: []*gmail.Message{{Id: "only"}},
		})
	})

	ids, err := client.SearchMessages("subject:hello", 10)
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "only" {
		t.Errorf("ids = %v, want [only]", ids)
	}
}

func TestHasLabel(t *testing.T) {
	msg := &gmail.Message{LabelIds: []string{"INBOX", "UNREAD", "Label_7"}}
	tests := []struct {
		labelID string
		want    bool
	}{
		{"UNREAD", true},
		{"Label_7", true},
		{"IMPORTANT", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := HasLabel(msg, tt.labelID); got != tt.want {
			t.Errorf("HasLabel(%q) = %v, want %v", tt.labelID, got, tt.want)
		}
	}
}

func TestFormatSummaries(t *testing.T) {
	out := FormatSummaries([]MessageSummary{
		{
			ID:      "m1",
			Subject: "Quarterly report",
			From:    "alice@example.com",
			Date:    "2026-08-20 09:15",
			Labels:  []string{"INBOX", "IMPORTANT"},
		},
		{
			ID:             "m2",
			Subject:        "Invoice",
			From:           "billing@example.com",
			Date:           "2026-08-21 10:00",
			HasAttachments: true,
		},
	})

	for _, want := range []string{
		"1. Message ID: m1",
		"Subject: Quarterly report",
		"Labels: INBOX, IMPORTANT",
		"Has Attachments: No",
		"2. Message ID: m2",
		"Labels: None",
		"Has Attachments: Yes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestFormatSummariesEmpty(t *testing.T) {
	if out := FormatSummaries(nil); out != "" {
		t.Errorf("FormatSummaries(nil) = %q, want empty", out)
	}
}
