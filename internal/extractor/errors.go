package extractor

import "fmt"

func errInvalidURL(u string) error {
	return fmt.Errorf("unsafe or invalid url: %q", u)
}

func errUnsupportedContentType(ct string) error {
	return fmt.Errorf("unsupported content type: %q", ct)
}
