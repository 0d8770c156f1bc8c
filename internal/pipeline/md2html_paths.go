package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// absoluteImages turns the relative img sources of an HTML fragment into
// file URLs under dir. Sources escaping dir, URLs and absolute paths are
// left alone.
func absoluteImages(fragment, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		rewriteImages(n, abs)
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func rewriteImages(n *html.Node, dir string) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, a := range n.Attr {
			if a.Key != "src" || !isRelativeSource(a.Val) {
				continue
			}
			src, err := url.PathUnescape(a.Val)
			if err != nil {
				continue
			}
			p := filepath.Join(dir, filepath.FromSlash(src))
			if !isUnder(p, dir) {
				continue
			}
			u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
			n.Attr[i].Val = u.String()
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteImages(c, dir)
	}
}

func isRelativeSource(src string) bool {
	if src == "" || strings.HasPrefix(src, "//") || strings.HasPrefix(src, "#") || filepath.IsAbs(src) {
		return false
	}
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		return false
	}
	return true
}

// isUnder reports whether p lies inside dir.
func isUnder(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
