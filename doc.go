// Package makdo converts between Word documents and makdo, a Markdown
// dialect for Japanese legal and office documents.
//
// # Quick Start
//
//	conv, err := makdo.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := conv.ToDocx(ctx, makdo.Input{
//	    Data:      source,
//	    SourceDir: "/path/to/markdown", // for relative image paths
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.docx", res.Data, 0o644)
//
// ToMarkdown goes the other way and returns the extracted images in
// Result.Media; ToHTML renders a standalone preview page.
//
// # The Dialect
//
// Headings are numbered by the converter: "#" is the title, "##" the
// articles (第１, or 第１条 in the contract and statute styles), deeper
// levels 1, ⑴, ア and so on. "$" lines are chapters (第１編, 第１章, ...).
// Lines such as "v=+0.5" or "<<=1" adjust spacing and indents of the
// next paragraph; "##=3" restarts a counter. A commented block at the top
// of the file holds the document settings (paper, margins, fonts).
//
// # Warnings
//
// Unusual but convertible input never fails a conversion. Each anomaly is
// returned in Result.Warnings with its source line and logged at Warn
// level through the logger given with WithLogger.
//
// # Configuration
//
// Defaults for every document are passed as configuration lines:
//
//	conv, err := makdo.NewConverter(
//	    makdo.WithSettings("document_style: k", "paper_size: A4横"),
//	    makdo.WithTimeout(30 * time.Second),
//	)
package makdo
