// Package pipeline converts between makdo Markdown and Word documents.
//
// The three directions share the paragraph model of the dialect:
//   - Exporter: Markdown to .docx. Lines are tokenized, classified into
//     paragraph kinds, numbered, given their length layers and written as
//     WordprocessingML parts.
//   - Importer: .docx to Markdown. Body blocks are read back into the same
//     kinds; the lengths a kind implies are subtracted so that only
//     deviations are written as revisers.
//   - Previewer: Markdown to a standalone HTML page through goldmark, with
//     numbered headings and fonts as the export would show them.
//
// Recoverable problems go to a warning.Collector; only unusable input or
// configuration is returned as an error.
package pipeline
