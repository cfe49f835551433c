// Package schedule turns human time notations into normalized schedules.
//
// Three entry points cover the notations a reminder can be created with:
//
//   - Resolve parses a one-shot expression (absolute date-time, relative
//     offset such as "30m", or a phrase such as "next monday 14:00") into
//     an instant.
//   - Translate converts a recurrence phrase ("every weekday at 8:30")
//     into a six-field cron expression, passing valid cron through.
//   - ParseCron and Cron.Next evaluate a six-field cron expression:
//
//	┌───────────── second (0-59)
//	│ ┌───────────── minute (0-59)
//	│ │ ┌───────────── hour (0-23)
//	│ │ │ ┌───────────── day of month (1-31)
//	│ │ │ │ ┌───────────── month (1-12 or JAN-DEC)
//	│ │ │ │ │ ┌───────────── day of week (0-6 or SUN-SAT, 0=Sunday)
//	│ │ │ │ │ │
//	* * * * * *
//
// Each cron field accepts comma-separated terms of the form *, */N, V,
// V-V, V-V/N or V/N. When both day fields are restricted a day matches
// if either one does; a field starting with * is unrestricted.
//
// All wall-clock matching happens in the location of the reference
// instant passed in by the caller.
package schedule
