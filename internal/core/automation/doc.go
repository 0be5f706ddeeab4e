// Package automation provides an object model over a book snapshot.
//
// A Book is opened from the snapshot a spreadsheet client posts. Reads come
// from the snapshot; every write updates the snapshot in place and records
// an action the client replays against the live workbook:
//
//	snap, err := automation.With(req, func(b *automation.Book) error {
//		sheet, err := b.Sheet(0)
//		if err != nil {
//			return err
//		}
//		cell, err := sheet.Range("A1")
//		if err != nil {
//			return err
//		}
//		return cell.SetValue("Hello")
//	})
//
// Failures are domain errors with XL-AUTO codes so that callers can show
// them to the spreadsheet user unchanged.
package automation
