// Package retrievers implements the DocumentRetriever variants, one per
// tax provider. Two families exist: direct retrievers that GET a PDF URL
// keyed by the invoice's tracking code, and portal retrievers that drive
// a lookup site in a browser, most of which include a CAPTCHA the
// operator solves by hand.
package retrievers
