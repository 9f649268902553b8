// Package sortname derives the keys book lists are ordered by, following the
// ALA/Library of Congress filing rule of ignoring leading articles.
package sortname

import (
	"strings"
)

// TitleArticles are the leading articles that are filed at the end of a
// title instead (e.g., "The Hobbit" -> "Hobbit, The").
var TitleArticles = []string{
	"The",
	"A",
	"An",
}

// ForTitle generates a sort title from a display title. The article keeps the
// case it was written in.
// Examples:
//   - "The Hobbit" -> "Hobbit, The"
//   - "A Wizard of Earthsea" -> "Wizard of Earthsea, A"
//   - "Anathem" -> "Anathem" (no change, the article must be a whole word)
func ForTitle(title string) string {
	title = strings.TrimSpace(title)

	for _, article := range TitleArticles {
		if len(title) <= len(article)+1 {
			continue
		}
		head := title[:len(article)]
		if !strings.EqualFold(head, article) || title[len(article)] != ' ' {
			continue
		}
		if rest := strings.TrimSpace(title[len(article):]); rest != "" {
			return rest + ", " + head
		}
	}

	return title
}
