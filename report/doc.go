// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package report shapes stored readings into the bounded views served to
dashboards: limits, pages, chart series, row DTOs and CSV.

# Limits

ParseLimit implements the listing/export rules:

	?all=1        every row (Unbounded)
	(missing)     1000
	?limit=abc    1000
	?limit=-5     1000
	?limit=0      no rows

# Pages

Paginate resolves ?page= against a row count with PerPage rows per page.
"" is the first page and "last" the final one. Anything else out of range
returns ErrInvalidPage, which handlers turn into 404. Page 1 of an empty
listing is valid.

# Timestamps

JSON and CSV rows carry ISO-8601 timestamps with a numeric offset
("2025-03-01T08:00:00+00:00", microseconds only when present). The
/api/v1 views use integer epoch seconds. Missing temperature and humidity
render as 0.0.
*/
package report
