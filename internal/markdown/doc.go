// Package markdown renders the site's markdown dialect.
//
// The lite engine (Render) groups lines into blocks with a single forward pass
// and resolves inline spans per block, producing Nodes a presenter can display
// directly. It understands headers (#, ##, ###), paragraphs, "-", "*" and
// numbered lists, pipe tables, fenced code blocks, and inline bold, italic,
// code, and links. It never fails: malformed input degrades to a paragraph or
// is dropped.
//
// HTMLRenderer turns Nodes into HTML. GoldmarkParser is an alternative engine
// for content that needs full CommonMark. Service selects between them.
package markdown
