package deviantart

import (
	"net/url"
	"sort"
	"strings"

	"github.com/scottbw/dvnt/internal/models"
	"github.com/scottbw/dvnt/internal/output"
	"github.com/scottbw/dvnt/internal/page"
)

// Browse feed names accepted by the browse endpoint.
var browseTypes = map[string]bool{
	"popular":         true,
	"newest":          true,
	"hot":             true,
	"undiscovered":    true,
	"dailydeviations": true,
}

// BrowseTypes lists the valid feed names, sorted.
func BrowseTypes() []string {
	names := make([]string, 0, len(browseTypes))
	for name := range browseTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BrowseSource pages through one of the public browse feeds.
func (s *Service) BrowseSource(browseType string) (*page.Source[models.Deviation], error) {
	browseType = strings.ToLower(browseType)
	if !browseTypes[browseType] {
		return nil, output.ErrUsageHint(
			"Unknown browse feed: "+browseType,
			"Valid feeds: "+strings.Join(BrowseTypes(), ", "),
		)
	}
	return s.deviationSource("/browse/"+browseType, func() url.Values { return url.Values{} }), nil
}

// TagSource pages through deviations carrying the given tag.
func (s *Service) TagSource(tag string) *page.Source[models.Deviation] {
	return s.deviationSource("/browse/tags", func() url.Values {
		q := url.Values{}
		q.Set("tag", tag)
		return q
	})
}
