package strategy

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperifyio/articlegen/internal/article"
	"github.com/hyperifyio/articlegen/internal/comments"
)

var threadRe = regexp.MustCompile(`^/r/([^/]+)/comments/([^/]+)(?:/([^/]+))?`)

// Thread identifies one discussion thread.
type Thread struct {
	Subreddit string
	Post      string
	Slug      string
}

// ParseThread extracts community, post id and slug from a thread URL.
func ParseThread(rawURL string) (Thread, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Thread{}, false
	}
	m := threadRe.FindStringSubmatch(u.Path)
	if m == nil {
		return Thread{}, false
	}
	return Thread{Subreddit: m[1], Post: m[2], Slug: m[3]}, true
}

// TitleFromSlug turns "best_cheap-running_shoes" into "Best Cheap Running Shoes".
func TitleFromSlug(slug string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(slug)
	// Casers carry state and are not safe for concurrent use.
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// CommentSearch lists the comments of a thread. *comments.Client satisfies it.
type CommentSearch interface {
	Search(ctx context.Context, subreddit, post string) ([]comments.Comment, error)
}

// Discussion handles community threads. The body is the thread's comments.
type Discussion struct {
	Comments CommentSearch
	Rewriter Rewriter
}

func (d *Discussion) Name() string { return string(KindDiscussion) }

func (d *Discussion) Extract(ctx context.Context, rawURL string, opts Options) (*article.Paragraph, error) {
	th, ok := ParseThread(rawURL)
	if !ok {
		log.Debug().Str("url", rawURL).Msg("not a thread url")
		return nil, nil
	}
	if d.Comments == nil {
		return nil, fmt.Errorf("comment search not configured")
	}
	cs, err := d.Comments.Search(ctx, th.Subreddit, th.Post)
	if err != nil {
		return nil, err
	}
	body := comments.Text(cs)
	if body == "" {
		log.Debug().Str("url", rawURL).Msg("thread has no comments")
		return nil, nil
	}
	p := &article.Paragraph{
		SourceURL: rawURL,
		Source: article.Source{
			Title:       TitleFromSlug(th.Slug),
			Description: body,
			Tags:        []string{"r/" + th.Subreddit},
		},
		ExternalLinks: []string{},
	}
	if !opts.Rewrite {
		p.Generated = passThrough(p.Source, opts.IncludeTitle)
		return p, nil
	}
	if opts.IncludeTitle && p.Source.Title != "" {
		title, ok := paraphraseText(ctx, d.Rewriter, p.Source.Title, opts)
		if !ok {
			return nil, nil
		}
		p.Generated.Title = title
	}
	text, ok := paraphraseText(ctx, d.Rewriter, body, opts)
	if !ok {
		return nil, nil
	}
	p.Generated.Text = text
	return p, nil
}
