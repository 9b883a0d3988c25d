package models

// ImageKind says which variant of a deviation's media an ImageSource
// refers to.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageContent
	ImagePreview
	ImageThumbnail
)

func (k ImageKind) String() string {
	switch k {
	case ImageContent:
		return "content"
	case ImagePreview:
		return "preview"
	case ImageThumbnail:
		return "thumbnail"
	default:
		return "none"
	}
}

// ImageSource is the resolved image for a deviation. Kind is ImageNone
// when the deviation carries no renderable media (journals, literature).
type ImageSource struct {
	Kind ImageKind
	File MediaFile
}

// Image resolves the best available image for display, preferring full
// content, then the preview, then the largest thumbnail.
func (d Deviation) Image() ImageSource {
	if d.Content != nil && d.Content.Src != "" {
		return ImageSource{Kind: ImageContent, File: *d.Content}
	}
	if d.Preview != nil && d.Preview.Src != "" {
		return ImageSource{Kind: ImagePreview, File: *d.Preview}
	}
	if t := d.largestThumb(); t != nil {
		return ImageSource{Kind: ImageThumbnail, File: *t}
	}
	return ImageSource{Kind: ImageNone}
}

// Thumb resolves the smallest thumbnail, falling back to the preview
// and then the content. Used for list views where bandwidth matters.
func (d Deviation) Thumb() ImageSource {
	if t := d.smallestThumb(); t != nil {
		return ImageSource{Kind: ImageThumbnail, File: *t}
	}
	if d.Preview != nil && d.Preview.Src != "" {
		return ImageSource{Kind: ImagePreview, File: *d.Preview}
	}
	if d.Content != nil && d.Content.Src != "" {
		return ImageSource{Kind: ImageContent, File: *d.Content}
	}
	return ImageSource{Kind: ImageNone}
}

func (d Deviation) largestThumb() *MediaFile {
	var best *MediaFile
	for i := range d.Thumbs {
		t := &d.Thumbs[i]
		if t.Src == "" {
			continue
		}
		if best == nil || t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	return best
}

func (d Deviation) smallestThumb() *MediaFile {
	var best *MediaFile
	for i := range d.Thumbs {
		t := &d.Thumbs[i]
		if t.Src == "" {
			continue
		}
		if best == nil || t.Width*t.Height < best.Width*best.Height {
			best = t
		}
	}
	return best
}
