package main

import (
	"html/template"
	"strings"
)

var forumTemplates = template.Must(template.New("forum").Parse(`
{{define "avatar"}}<img alt='' src='{{.AvatarUrl}}' class='avatar avatar-14 photo' height='14' width='14' />{{end}}

{{define "profile_link"}}{{if .}}<a href="{{.Url}}" title="View {{.Name}}'s profile" class="bbp-author-name" rel="nofollow">{{.Name}}</a>{{else}}Anonymous{{end}}{{end}}

{{define "author_link"}}{{if .}}<a href="{{.Url}}" title="View {{.Name}}'s profile" class="bbp-author-avatar" rel="nofollow">{{template "avatar" .}}</a>&nbsp;<a href="{{.Url}}" title="View {{.Name}}'s profile" class="bbp-author-name" rel="nofollow">{{.Name}}</a>{{else}}Anonymous{{end}}{{end}}

{{define "last_poster"}}<div class='last-posted-topic-title'><a href='{{.Permalink}}'>{{.Title}}</a></div><div class='last-posted-topic-user'>by <span class="bbp-author-avatar">{{with .Author}}{{template "avatar" .}}{{end}}&nbsp;</span>{{template "profile_link" .Author}}</div><div class='last-posted-topic-time'>{{.Freshness}}</div>{{end}}

{{define "topic_last_poster"}}<div class='last-posted-topic-user'>{{template "author_link" .Author}}</div><div class='last-posted-topic-time'>{{.Freshness}}</div>{{end}}

{{define "forum_list"}}<ul class="bbp-forums-list">{{range .}}<li class='{{.RowClass}}'><ul><li class="bbp-forum"><div class="bbp-forum-title-container"><a href="{{.Permalink}}" class="bbp-forum-link">{{.Title}}</a>{{.Description}}</div>{{.Counts}}<div class='freshness-forum-link'>{{with .LastPoster}}{{template "last_poster" .}}{{end}}</div></li></ul></li>{{end}}</ul>{{end}}

{{define "latest_topics"}}<h5 class="forum-topic-title">Latest Discussions</h5>

	<ul class="bbp-topics">
{{range .}}
	<li>
		<ul>
		<li class="bbp-topic-title">
				<a href="{{.Permalink}}" title="{{.Title}}">{{.Title}}</a>
		</li>

		<li class="bbp-topic-reply-count">Replies: {{.ReplyCount}}</li>

		<li class="bbp-topic-freshness">
				<p class="bbp-topic-meta">
					<span class="bbp-topic-freshness-author">{{template "author_link" .LastAuthor}}</span>
				</p>
		</li>
		</ul>
	</li>
{{end}}
	</ul>
{{end}}
`))

type authorView struct {
	Name      string
	Url       string
	AvatarUrl string
}

type lastPosterView struct {
	Title     string
	Permalink string
	Author    *authorView
	Freshness string
}

type forumRowView struct {
	RowClass    string
	Title       string
	Permalink   string
	Description string
	Counts      string
	LastPoster  *lastPosterView
}

type topicRowView struct {
	Title      string
	Permalink  string
	ReplyCount int
	LastAuthor *authorView
}

func renderForumTemplate(name string, data interface{}) (string, error) {
	var b strings.Builder

	if err := forumTemplates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}

	return b.String(), nil
}
