package parse

import "github.com/PuerkitoBio/goquery"

// NoiseSelector matches markup that never belongs in extracted text:
// scripts, footnote markers, edit links and print-hidden boxes.
const NoiseSelector = "script, style, noscript, sup.reference, .mw-editsection, .noprint"

// RemoveSelectors deletes every node matching selector and returns how many
// were removed.
func RemoveSelectors(doc *goquery.Document, selector string) int {
	if doc == nil {
		return 0
	}
	matched := doc.Find(selector)
	matched.Remove()
	return matched.Length()
}

// RemoveNoise strips NoiseSelector from doc in place.
func RemoveNoise(doc *goquery.Document) {
	RemoveSelectors(doc, NoiseSelector)
}
