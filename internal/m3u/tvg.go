package m3u

import (
	"fmt"
	"io"
)

// TVGTags holds the vendor attributes written on a metadata line.
type TVGTags struct {
	ID         string
	Logo       string
	GroupTitle string
}

func (t *TVGTags) empty() bool {
	return t == nil || (t.ID == "" && t.Logo == "" && t.GroupTitle == "")
}

func (t *TVGTags) encode(w io.Writer) error {
	sep := ""
	if t.ID != "" {
		if _, err := fmt.Fprintf(w, "tvg-id=\"%s\"", t.ID); err != nil {
			return err
		}
		sep = " "
	}

	if t.Logo != "" {
		if _, err := fmt.Fprintf(w, "%stvg-logo=\"%s\"", sep, t.Logo); err != nil {
			return err
		}
		sep = " "
	}

	if t.GroupTitle != "" {
		if _, err := fmt.Fprintf(w, "%sgroup-title=\"%s\"", sep, t.GroupTitle); err != nil {
			return err
		}
	}

	return nil
}
