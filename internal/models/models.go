// Package models provides canonical type definitions for DeviantArt API entities.
// These types are shared by the API client, the services, and the CLI.
package models

import (
	"strconv"
	"time"
)

// User represents a DeviantArt user reference.
// Used for authors, originators, commenters, and watch relations.
type User struct {
	UserID   string `json:"userid"`
	Username string `json:"username"`
	UserIcon string `json:"usericon,omitempty"`
	Type     string `json:"type,omitempty"`
}

// MediaFile is a single renderable image variant.
type MediaFile struct {
	Src          string `json:"src"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Transparency bool   `json:"transparency,omitempty"`
	FileSize     int64  `json:"filesize,omitempty"`
}

// DeviationStats holds the public counters on a deviation.
type DeviationStats struct {
	Comments   int `json:"comments"`
	Favourites int `json:"favourites"`
}

// Deviation represents a single submission.
type Deviation struct {
	DeviationID    string          `json:"deviationid"`
	Title          string          `json:"title"`
	URL            string          `json:"url,omitempty"`
	Author         *User           `json:"author,omitempty"`
	Stats          *DeviationStats `json:"stats,omitempty"`
	PublishedTime  string          `json:"published_time,omitempty"`
	IsMature       bool            `json:"is_mature,omitempty"`
	IsFavourited   bool            `json:"is_favourited,omitempty"`
	IsDeleted      bool            `json:"is_deleted,omitempty"`
	IsDownloadable bool            `json:"is_downloadable,omitempty"`
	Category       string          `json:"category,omitempty"`
	Content        *MediaFile      `json:"content,omitempty"`
	Preview        *MediaFile      `json:"preview,omitempty"`
	Thumbs         []MediaFile     `json:"thumbs,omitempty"`
	Excerpt        string          `json:"excerpt,omitempty"`
}

func (d Deviation) Identity() string { return d.DeviationID }

// Published returns the publish time. The API reports it as an epoch
// seconds string; a zero time is returned when absent or malformed.
func (d Deviation) Published() time.Time {
	if d.PublishedTime == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(d.PublishedTime, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// DeviationMetadata carries the extended fields fetched separately from
// the deviation itself.
type DeviationMetadata struct {
	DeviationID   string `json:"deviationid"`
	Description   string `json:"description,omitempty"`
	License       string `json:"license,omitempty"`
	AllowsComment bool   `json:"allows_comments,omitempty"`
	Tags          []Tag  `json:"tags,omitempty"`
	IsFavourited  bool   `json:"is_favourited,omitempty"`
	IsMature      bool   `json:"is_mature,omitempty"`
}

// Tag is a deviation tag with its canonical name.
type Tag struct {
	TagName   string `json:"tag_name"`
	Sponsored bool   `json:"sponsored,omitempty"`
	Sponsor   string `json:"sponsor,omitempty"`
}

// MessageSubject identifies what a notification is about.
type MessageSubject struct {
	Deviation *Deviation `json:"deviation,omitempty"`
	Comment   *Comment   `json:"comment,omitempty"`
	Profile   *User      `json:"profile,omitempty"`
}

// Message represents a notification from the feed or a feedback stack.
type Message struct {
	MessageID  string          `json:"messageid"`
	Type       string          `json:"type"`
	Orphaned   bool            `json:"orphaned,omitempty"`
	TS         string          `json:"ts,omitempty"`
	StackID    string          `json:"stackid,omitempty"`
	StackCount int             `json:"stack_count,omitempty"`
	IsNew      bool            `json:"is_new,omitempty"`
	Originator *User           `json:"originator,omitempty"`
	Subject    *MessageSubject `json:"subject,omitempty"`
	HTML       string          `json:"html,omitempty"`
	Deviation  *Deviation      `json:"deviation,omitempty"`
	Comment    *Comment        `json:"comment,omitempty"`
}

func (m Message) Identity() string { return m.MessageID }

// Time parses the feed timestamp. The feed uses RFC 3339 with a
// numeric zone offset and no colon; both variants are accepted.
func (m Message) Time() time.Time {
	if m.TS == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if t, err := time.Parse(layout, m.TS); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Note represents a private note.
type Note struct {
	NoteID     string  `json:"noteid"`
	TS         string  `json:"ts,omitempty"`
	Unread     bool    `json:"unread,omitempty"`
	Starred    bool    `json:"starred,omitempty"`
	Subject    string  `json:"subject,omitempty"`
	Preview    string  `json:"preview,omitempty"`
	Body       string  `json:"body,omitempty"`
	User       *User   `json:"user,omitempty"`
	Recipients []User  `json:"recipients,omitempty"`
	Origin     *Folder `json:"origin,omitempty"`
}

func (n Note) Identity() string { return n.NoteID }

// Comment represents a comment in a thread.
type Comment struct {
	CommentID string `json:"commentid"`
	ParentID  string `json:"parentid,omitempty"`
	Posted    string `json:"posted,omitempty"`
	Replies   int    `json:"replies,omitempty"`
	Body      string `json:"body,omitempty"`
	User      *User  `json:"user,omitempty"`
	Hidden    string `json:"hidden,omitempty"`
}

func (c Comment) Identity() string { return c.CommentID }

// Folder is a gallery, collection, or notes folder.
type Folder struct {
	FolderID string `json:"folderid"`
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Size     int    `json:"size,omitempty"`
	Count    int    `json:"count,omitempty"`
	Parent   string `json:"parent,omitempty"`
}

func (f Folder) Identity() string { return f.FolderID }

// DisplayName returns whichever of Name or Title the API populated.
// Gallery and collection folders use name, notes folders use title.
func (f Folder) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Title
}

// UserStats holds the counters on a user profile.
type UserStats struct {
	UserDeviations  int `json:"user_deviations"`
	UserFavourites  int `json:"user_favourites"`
	UserComments    int `json:"user_comments"`
	ProfilePageview int `json:"profile_pageviews"`
	ProfileComments int `json:"profile_comments"`
}

// UserProfile represents a full profile response.
type UserProfile struct {
	User           User       `json:"user"`
	ProfileURL     string     `json:"profile_url,omitempty"`
	RealName       string     `json:"real_name,omitempty"`
	Tagline        string     `json:"tagline,omitempty"`
	CountryID      int        `json:"countryid,omitempty"`
	Country        string     `json:"country,omitempty"`
	Website        string     `json:"website,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	CoverDeviation *Deviation `json:"cover_deviation,omitempty"`
	Stats          *UserStats `json:"stats,omitempty"`

	// Watcher and watching counts are not part of the profile payload;
	// they are filled in from the watchers/friends endpoints or, as a
	// last resort, scraped from the public profile page.
	Watchers int `json:"watchers,omitempty"`
	Watching int `json:"watching,omitempty"`
}

func (p UserProfile) Identity() string { return p.User.Username }

// Watcher represents one entry from the watchers or friends lists.
type Watcher struct {
	User       User   `json:"user"`
	IsWatching bool   `json:"is_watching,omitempty"`
	LastVisit  string `json:"lastvisit,omitempty"`
	Watch      *Watch `json:"watch,omitempty"`
}

func (w Watcher) Identity() string { return w.User.Username }

// Watch describes what a watch relation subscribes to.
type Watch struct {
	Friend       bool `json:"friend"`
	Deviations   bool `json:"deviations"`
	Journals     bool `json:"journals"`
	ForumThreads bool `json:"forum_threads"`
	Critiques    bool `json:"critiques"`
	Scraps       bool `json:"scraps"`
	Activity     bool `json:"activity"`
	Collections  bool `json:"collections"`
}
