package models

// Bucket is an attachment category. Its value is the name used in download
// URLs; Dir is the storage sub-directory under the upload root.
type Bucket string

const (
	BucketImage Bucket = "image"
	BucketVideo Bucket = "video"
	BucketAudio Bucket = "audio"
	BucketPDF   Bucket = "pdf"
	BucketOther Bucket = "other"
)

func ParseBucket(s string) (Bucket, bool) {
	switch b := Bucket(s); b {
	case BucketImage, BucketVideo, BucketAudio, BucketPDF:
		return b, true
	}
	return "", false
}

func (b Bucket) Dir() string {
	switch b {
	case BucketImage:
		return "images"
	case BucketVideo:
		return "videos"
	case BucketAudio:
		return "audio"
	case BucketPDF:
		return "pdfs"
	}
	return "others"
}

// BucketDirs is every directory the upload root must contain.
var BucketDirs = []string{"images", "videos", "audio", "pdfs", "others"}
