package doctree

// Chunk is one segment of a document together with the headings it falls under.
type Chunk struct {
	Chapter string `json:"chapter"` // Most recent chapter heading line ("" if none)
	Article string `json:"article"` // Most recent article heading line ("" if none)
	Content string `json:"content"` // Non-blank source lines joined with "\n"
}

// DocTree is a chapter/article outline rebuilt from a chunk sequence.
type DocTree struct {
	Title    string     `json:"title,omitempty"`
	Children []*DocNode `json:"children"`
}

// DocNode is a chapter (top level) or an article (nested under a chapter).
// Loose text that belongs to a chapter but not to any article is kept in Text.
type DocNode struct {
	Title    string     `json:"title"`
	Text     string     `json:"text,omitempty"`
	Children []*DocNode `json:"children,omitempty"`
}

// Build groups chunks into chapter nodes, in source order. Consecutive chunks
// sharing a chapter heading land under the same node; chunks without a
// chapter heading are collected under an untitled node.
func Build(title string, chunks []Chunk) *DocTree {
	tree := &DocTree{Title: title, Children: []*DocNode{}}

	var current *DocNode
	for i, c := range chunks {
		if current == nil || c.Chapter != chunks[i-1].Chapter {
			current = &DocNode{Title: c.Chapter}
			tree.Children = append(tree.Children, current)
		}
		if c.Article != "" {
			current.Children = append(current.Children, &DocNode{
				Title: c.Article,
				Text:  c.Content,
			})
			continue
		}
		if c.Content == "" {
			continue
		}
		if current.Text != "" {
			current.Text += "\n" + c.Content
		} else {
			current.Text = c.Content
		}
	}

	return tree
}
