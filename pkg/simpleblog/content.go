package simpleblog

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// ParseBlocks interprets a raw content payload. It attempts to decode a
// serialized block list; if decoding fails or the result is not a list, the
// entire input becomes a single text block. Malformed structured input is
// graceful degradation here, never an error.
func ParseBlocks(raw string) []Block {
	var blocks []Block
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil || blocks == nil {
		return []Block{{Type: BlockTypeText, Value: raw}}
	}
	return blocks
}

// ContentImagePlaceholder returns the positional placeholder token for the
// i-th file submitted under the content-images field. The token format is
// shared with clients: an image block whose value equals the token is
// rewritten to the stored asset's URI.
func ContentImagePlaceholder(i int) string {
	return fmt.Sprintf("contentImages[%d]", i)
}

// ResolveImagePlaceholders rewrites image blocks whose value matches a known
// placeholder token to the corresponding storage URI. Unmatched values pass
// through unchanged.
func ResolveImagePlaceholders(blocks []Block, resolved map[string]string) []Block {
	out := make([]Block, len(blocks))
	for i, block := range blocks {
		if block.Type == BlockTypeImage {
			if uri, ok := resolved[block.Value]; ok {
				block.Value = uri
			}
		}
		out[i] = block
	}
	return out
}

// SanitizeBlocks strips transient per-block identifiers. It is applied before
// any normalized content is returned to a caller.
func SanitizeBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, block := range blocks {
		block.RefID = ""
		out[i] = block
	}
	return out
}

// RenderBlocks derives a render-ready HTML string from content blocks. Text
// blocks are escaped and wrapped in a paragraph, image blocks become a
// lazy-loaded image element, unknown block types contribute nothing. The
// derivation is pure: the same blocks always yield the same string.
func RenderBlocks(blocks []Block) string {
	var sb strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case BlockTypeText:
			sb.WriteString("<p>")
			sb.WriteString(html.EscapeString(block.Value))
			sb.WriteString("</p>")
		case BlockTypeImage:
			sb.WriteString(`<img src="`)
			sb.WriteString(block.Value)
			sb.WriteString(`" alt="content-image" loading="lazy" />`)
		}
	}
	return sb.String()
}

// ParseTags splits a comma-separated tag string into a trimmed list. The
// system does not deduplicate; that is the caller's responsibility.
func ParseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tags = append(tags, strings.TrimSpace(p))
	}
	return tags
}
