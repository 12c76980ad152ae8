package summary

import (
	"regexp"
	"strings"
)

// Sections holds the five analysis dimensions of a report.
type Sections struct {
	UserLikes        string `json:"userLikes"`
	UserDislikes     string `json:"userDislikes"`
	UserExpectations string `json:"userExpectations"`
	Improvements     string `json:"improvements"`
	UserProfile      string `json:"userProfile"`
}

func (s *Sections) slot(n int) *string {
	switch n {
	case 1:
		return &s.UserLikes
	case 2:
		return &s.UserDislikes
	case 3:
		return &s.UserExpectations
	case 4:
		return &s.Improvements
	case 5:
		return &s.UserProfile
	}
	return nil
}

// markerPattern matches "1.", "## 2)", "**3、", "4:" and similar section openers.
var markerPattern = regexp.MustCompile(`^(#{1,6}\s*)?(\*\*)?\s*([1-5])\s*[.)、:：]\s*(.*)$`)

// A marker is decorated when it carries a "#" or "**" prefix. Once a report
// opens with a decorated marker, plain "1." lines belong to numbered lists
// inside sections.
type marker struct {
	section   int
	heading   string
	decorated bool
}

// Keywords are checked in this order so "dislike" wins over "like".
var sectionKeywords = []struct {
	section  int
	keywords []string
}{
	{2, []string{"dislike", "complain", "complaint", "criticism", "不满", "抱怨", "批评"}},
	{1, []string{"like", "love", "appreciat", "喜好", "喜欢", "欣赏"}},
	{3, []string{"expect", "wish", "期待", "期望"}},
	{4, []string{"improve", "suggestion", "optimiz", "建议", "优化", "改进"}},
	{5, []string{"profile", "audience", "persona", "画像", "用户群", "观众"}},
}

// ParseSections splits model output into the five dimensions. It tries, in
// order: five numbered markers in sequence and in one style; the same with
// mixed styles; a line scan that follows numbered markers in any order and
// keyword headings; and finally the whole text as UserLikes. Text before the
// first recognised marker is dropped.
func ParseSections(text string) Sections {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, sameStyle := range []bool{true, false} {
		if sections, ok := parseStructured(lines, sameStyle); ok {
			return sections
		}
	}
	if sections, ok := parseKeywordScan(lines); ok {
		return sections
	}
	return Sections{UserLikes: strings.TrimSpace(text)}
}

func parseMarker(line string) (marker, bool) {
	m := markerPattern.FindStringSubmatch(line)
	if m == nil {
		return marker{}, false
	}
	return marker{
		section:   int(m[3][0] - '0'),
		heading:   cleanHeading(m[4]),
		decorated: m[1] != "" || m[2] != "",
	}, true
}

// markerMatcher accepts markers in the style of the first one it sees.
type markerMatcher struct {
	decorated bool
	locked    bool
}

func (mm *markerMatcher) match(line string) (marker, bool) {
	mk, ok := parseMarker(line)
	if !ok {
		return marker{}, false
	}
	if !mm.locked {
		mm.decorated, mm.locked = mk.decorated, true
		return mk, true
	}
	if mk.decorated != mm.decorated {
		return marker{}, false
	}
	return mk, true
}

func cleanHeading(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "**")
	s = strings.TrimSuffix(s, "**")
	return strings.TrimSpace(s)
}

type sectionBuilder struct {
	parts [6][]string
}

func (b *sectionBuilder) add(section int, text string) {
	if text = strings.TrimSpace(text); text != "" {
		b.parts[section] = append(b.parts[section], text)
	}
}

func (b *sectionBuilder) build() Sections {
	var s Sections
	for n := 1; n <= 5; n++ {
		*s.slot(n) = strings.Join(b.parts[n], " ")
	}
	return s
}

func parseStructured(lines []string, sameStyle bool) (Sections, bool) {
	var b sectionBuilder
	var mm markerMatcher
	expected, current := 1, 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if expected <= 5 {
			if mk, ok := parseMarker(line); ok && mk.section == expected {
				if _, ok := mm.match(line); ok || !sameStyle {
					current = mk.section
					expected++
					b.add(current, mk.heading)
					continue
				}
			}
		}
		if current > 0 {
			b.add(current, line)
		}
	}
	if expected <= 5 {
		return Sections{}, false
	}
	return b.build(), true
}

func parseKeywordScan(lines []string) (Sections, bool) {
	var b sectionBuilder
	var mm markerMatcher
	current := 0
	found := false
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if mk, ok := mm.match(line); ok {
			current, found = mk.section, true
			b.add(current, mk.heading)
			continue
		}
		if n, ok := headingSection(line); ok {
			current, found = n, true
			continue
		}
		if current > 0 {
			b.add(current, line)
		}
	}
	return b.build(), found
}

// headingSection recognises markdown, bold, or colon-terminated headings that
// name a section.
func headingSection(line string) (int, bool) {
	var title string
	switch {
	case strings.HasPrefix(line, "#"):
		title = strings.TrimLeft(line, "# ")
	case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
		title = line[2 : len(line)-2]
	case strings.HasSuffix(line, ":") || strings.HasSuffix(line, "："):
		title = strings.TrimSuffix(strings.TrimSuffix(line, ":"), "：")
	default:
		return 0, false
	}
	title = strings.ToLower(title)
	for _, entry := range sectionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(title, kw) {
				return entry.section, true
			}
		}
	}
	return 0, false
}

// joinSections parses each batch report on its own and joins every dimension
// across batches in batch order.
func joinSections(batches []BatchSummary) Sections {
	var b sectionBuilder
	for _, batch := range batches {
		parsed := ParseSections(batch.Summary)
		for n := 1; n <= 5; n++ {
			b.add(n, *parsed.slot(n))
		}
	}
	return b.build()
}
