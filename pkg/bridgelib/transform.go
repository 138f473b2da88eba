package bridgelib

import (
	"regexp"
	"strings"
)

var (
	stripLinkRe   *regexp.Regexp
	stripScriptRe *regexp.Regexp
	headCloseRe   = regexp.MustCompile(`(?i)</head>`)
	bodyOpenRe    = regexp.MustCompile(`(?i)<body\b[^>]*>`)
)

func init() {
	alt := regexp.QuoteMeta(ProductionAssetPrefixes[0]) + "|" + regexp.QuoteMeta(ProductionAssetPrefixes[1])
	// href/src may sit anywhere in the tag and use either quote style.
	// The attribute name must follow whitespace so data-href/data-src
	// never match.
	href := `(?:"(?:` + alt + `)[^"]*"|'(?:` + alt + `)[^']*')`
	stripLinkRe = regexp.MustCompile(`(?i)<link\b[^>]*\shref=` + href + `[^>]*>`)
	stripScriptRe = regexp.MustCompile(`(?i)<script\b[^>]*\ssrc=` + href + `[^>]*>\s*</script>`)
}

// TransformHTML strips the backend's production asset tags from doc and
// injects the dev asset tags for the given module. It is pure:
// identical inputs yield identical output, and bytes outside the
// stripped and inserted regions are untouched.
//
// The injection list goes immediately before </head> when present,
// otherwise immediately after the opening <body> tag, otherwise in
// front of the whole document.
func TransformHTML(doc, module string, assets AssetConfig) string {
	doc = stripLinkRe.ReplaceAllString(doc, "")
	doc = stripScriptRe.ReplaceAllString(doc, "")

	block := strings.Join(injectionList(module, assets), "\n")
	if loc := headCloseRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[0]] + block + "\n" + doc[loc[0]:]
	}
	if loc := bodyOpenRe.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "\n" + block + doc[loc[1]:]
	}
	return block + "\n" + doc
}

// injectionList orders the tags to insert: the asset host's client
// bootstrap first, then the global entry points, then the module's.
// Within each entry-point pair the style tag precedes the script tag.
func injectionList(module string, assets AssetConfig) []string {
	tags := []string{scriptTag(ClientBootstrapPath)}
	if assets.Global.Style != "" {
		tags = append(tags, styleTag(assets.Global.Style))
	}
	if assets.Global.Script != "" {
		tags = append(tags, scriptTag(assets.Global.Script))
	}
	if module != "" && assets.ResolveModule != nil {
		ep := assets.ResolveModule(module)
		if ep.Style != "" {
			tags = append(tags, styleTag(ep.Style))
		}
		if ep.Script != "" {
			tags = append(tags, scriptTag(ep.Script))
		}
	}
	return tags
}

func scriptTag(src string) string {
	return `<script type="module" src="` + src + `"></script>`
}

func styleTag(href string) string {
	return `<link rel="stylesheet" href="` + href + `">`
}
