// Package xlsx bridges local .xlsx files and book snapshots.
//
// Open reads a workbook with excelize; Snapshot builds the JSON snapshot a
// spreadsheet client would send; Apply replays the actions returned by the
// server onto the file, which can then be saved. Actions that only make
// sense in a live client (alerts, macros) are reported as skipped.
package xlsx
