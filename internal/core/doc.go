// Package core provides the table-cleaning operations behind tabclean.
//
// The package holds all domain logic independent of any transport. The HTTP
// handlers and the CLI both drive it through the same types.
//
// # Tables and Values
//
// A [Table] is an ordered list of columns and positional rows. Each cell is a
// [Value]: null, a string, or a number. Values are comparable, so duplicate
// detection groups cells with a plain map.
//
// # Operations
//
//   - [NormalizeColumns] and [EditColumns]: canonical column names, then
//     include/exclude/rename directives.
//   - [DetectDuplicates], [ListDuplicates] and [ResolveDuplicates]: count,
//     inspect, then merge or delete repeated rows.
//   - [NormalizePhones]: classify a phone column against [PhoneRules] and
//     write the cleaned number and country back into the table.
//
// Every operation validates its input before changing anything; a failed
// call leaves the table exactly as it was.
//
// # Sessions
//
// Tables live in a [Session]. The [SessionStore] creates sessions on upload,
// evicts idle ones, and serializes operations per session:
//
//	store := core.NewSessionStore(2*time.Hour, 1000)
//	svc := core.NewService(store)
//	id, cols, rows := svc.Load(ctx, "", "contacts.csv", table)
//	summary, err := svc.DetectDuplicates(ctx, id)
//
// # Error Handling
//
// Failures are typed ([ColumnNotFoundError], [InvalidIndicesError], ...) and
// wrap sentinels such as [ErrColumnNotFound]. [MapError] turns any error into
// a [UserMessage] with a support code:
//
//   - DATA001, COL001, ROW001, ACT001: request refers to data that is not there
//   - FILE001-FILE004: upload problems (size, type, format, missing file)
//   - SES001, UPL002, REQ001, RATE001: session, capacity and request errors
package core
