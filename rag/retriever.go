package rag

import (
	"sort"

	"notetutor/types"
)

// TopK is how many scored chunks a retrieval returns at most.
const TopK = 5

// BuildChunks runs the chunker over every note's title and content and tags
// each chunk with its source note title and 1-based index.
func BuildChunks(notes []types.Note, maxChars int) []types.Chunk {
	var chunks []types.Chunk
	for _, note := range notes {
		text := note.Title + "\n\n" + note.Content
		for i, c := range SplitChunks(text, maxChars) {
			chunks = append(chunks, types.Chunk{
				NoteTitle: note.Title,
				Index:     i + 1,
				Text:      c,
			})
		}
	}
	return chunks
}

// Retrieve scores every chunk of the given notes against the query and
// returns the TopK best, sorted by descending score. The sort is stable, so
// ties keep note order then chunk order. Zero notes or zero chunks yield an
// empty result; callers treat that as "no grounding available".
func Retrieve(query string, notes []types.Note, maxChars int) []types.ScoredChunk {
	chunks := BuildChunks(notes, maxChars)
	if len(chunks) == 0 {
		return nil
	}

	scored := make([]types.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, types.ScoredChunk{
			Chunk: c,
			Score: ScoreChunk(query, c.Text),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > TopK {
		scored = scored[:TopK]
	}
	return scored
}
