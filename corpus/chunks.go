package corpus

import (
	"strings"

	"github.com/pileworks/novelty/core"
)

// DefaultMaxChunkChars is the default chunk size bound in characters.
const DefaultMaxChunkChars = 2_000_000

// BuildChunks greedily groups whole documents into chunks of roughly
// maxChunkChars characters. The bound is checked before appending the next
// document, so a chunk may exceed it by up to one document's length; a
// document is never split across chunks.
//
// Chunk indices are startIndex, startIndex+1, ... so that numbering
// continues across shard boundaries. maxChunks of zero means unlimited.
// An empty document list yields no chunks.
func BuildChunks(docs []string, maxChunkChars, maxChunks, startIndex int) []core.Chunk {
	var chunks []core.Chunk
	i := 0
	for i < len(docs) && (maxChunks == 0 || len(chunks) < maxChunks) {
		var builder strings.Builder
		for i < len(docs) && builder.Len() < maxChunkChars {
			builder.WriteString(docs[i])
			i++
		}
		chunks = append(chunks, core.Chunk{
			Index: startIndex + len(chunks),
			Text:  builder.String(),
		})
	}
	return chunks
}
