package frontier

import (
	"fmt"
	"testing"

	"github.com/insightmine/reddit-quote-miner/internal/miner"
)

func TestAdmitDeduplicates(t *testing.T) {
	f := New(10)
	hit := miner.SearchHit{URL: "https://www.reddit.com/r/chile/comments/abc/x/?utm=1", Title: "t"}

	if !f.Admit(hit, "kw", "chile") {
		t.Fatalf("first admit should succeed")
	}
	// Same canonical URL through a different keyword still counts as seen.
	same := miner.SearchHit{URL: "https://www.reddit.com/r/chile/comments/abc/x/#frag"}
	if f.Admit(same, "other", "chile") {
		t.Fatalf("second admit of the same canonical URL should be rejected")
	}
	if f.Size() != 1 {
		t.Fatalf("expected 1 queued request, got %d", f.Size())
	}
}

func TestAdmitQuota(t *testing.T) {
	f := New(3)
	admitted := 0
	for i := 0; i < 10; i++ {
		hit := miner.SearchHit{URL: fmt.Sprintf("https://www.reddit.com/r/chile/comments/p%d/x", i)}
		if f.Admit(hit, "kw", "chile") {
			admitted++
		}
	}
	if admitted != 3 {
		t.Fatalf("expected quota to cap admissions at 3, got %d", admitted)
	}

	// A different pair has its own counter.
	if !f.Admit(miner.SearchHit{URL: "https://www.reddit.com/r/mexico/comments/q1/x"}, "kw", "mexico") {
		t.Fatalf("expected independent quota for a different pair")
	}
	// Empty subreddit is the "all" bucket.
	if !f.Admit(miner.SearchHit{URL: "https://www.reddit.com/r/misc/comments/q2/x"}, "kw", "") {
		t.Fatalf("expected unrestricted search to use its own bucket")
	}
}

func TestAdmitCarriesMetadata(t *testing.T) {
	f := New(5)
	hit := miner.SearchHit{
		URL:       "https://www.reddit.com/r/santiago/comments/abc/x/?ref=s",
		Title:     "search title",
		Subreddit: "santiago",
	}
	if !f.Admit(hit, "clases", "chile") {
		t.Fatalf("admit failed")
	}

	reqs := f.Pending()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.URL != "https://www.reddit.com/r/santiago/comments/abc/x/" {
		t.Fatalf("expected canonical URL, got %q", req.URL)
	}
	if req.Keyword != "clases" || req.SearchTitle != "search title" {
		t.Fatalf("metadata not carried: %+v", req)
	}
	if req.Subreddit != "santiago" {
		t.Fatalf("hit subreddit should win over search pair, got %q", req.Subreddit)
	}
}

func TestPendingPreservesOrder(t *testing.T) {
	f := New(100)
	for i := 0; i < 5; i++ {
		f.Admit(miner.SearchHit{URL: fmt.Sprintf("https://x.com/r/a/comments/%d/x", i)}, "kw", "a")
	}
	reqs := f.Pending()
	for i, req := range reqs {
		want := fmt.Sprintf("https://x.com/r/a/comments/%d/x", i)
		if req.URL != want {
			t.Fatalf("admission order not preserved at %d: %q", i, req.URL)
		}
	}
}
