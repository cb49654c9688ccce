package hover

import "strings"

// KeywordInfo contains hover documentation for a SOQL keyword.
type KeywordInfo struct {
	Name        string
	Description string
	Syntax      string
}

// FunctionInfo contains hover documentation for a SOQL function.
type FunctionInfo struct {
	Name        string
	Signature   string
	ReturnType  string
	Description string
}

// DateLiteralInfo contains hover documentation for a named date literal.
type DateLiteralInfo struct {
	Name        string
	Description string
	Example     string
}

// Keywords is a map of SOQL keywords to their documentation.
var Keywords = map[string]*KeywordInfo{
	// Clause keywords
	"SELECT": {Name: "SELECT", Description: "Specifies the fields to retrieve", Syntax: "SELECT fields FROM object [WHERE conditions]"},
	"FROM":   {Name: "FROM", Description: "Specifies the SObject to query, or the child relationship in a nested subquery", Syntax: "FROM SObject | (SELECT fields FROM ChildRelationship)"},
	"WHERE":  {Name: "WHERE", Description: "Filters records based on field conditions", Syntax: "WHERE condition [AND|OR condition ...]"},
	"WITH":   {Name: "WITH", Description: "Applies a filtering context such as enforced field-level security or data categories", Syntax: "WITH SECURITY_ENFORCED | WITH DATA CATEGORY group__c AT category"},
	"GROUP":  {Name: "GROUP", Description: "Used with BY to aggregate records by field values", Syntax: "GROUP BY field [, field ...] | GROUP BY ROLLUP (...) | GROUP BY CUBE (...)"},
	"BY":     {Name: "BY", Description: "Used with GROUP or ORDER to list the grouping/sorting fields", Syntax: "GROUP BY field | ORDER BY field"},
	"HAVING": {Name: "HAVING", Description: "Filters aggregate groups, like WHERE for GROUP BY results", Syntax: "HAVING aggregate_function(field) condition"},
	"ORDER":  {Name: "ORDER", Description: "Used with BY to sort query results", Syntax: "ORDER BY field [ASC|DESC] [NULLS FIRST|LAST]"},
	"LIMIT":  {Name: "LIMIT", Description: "Caps the number of returned records", Syntax: "LIMIT count"},
	"OFFSET": {Name: "OFFSET", Description: "Skips records for result pagination (maximum 2000)", Syntax: "OFFSET count"},
	"USING":  {Name: "USING", Description: "Used with SCOPE to restrict the record set", Syntax: "USING SCOPE mine|team|everything|delegated"},
	"SCOPE":  {Name: "SCOPE", Description: "Names the record scope filter for USING", Syntax: "USING SCOPE mine"},
	"FOR":    {Name: "FOR", Description: "Requests record locking or tracking semantics", Syntax: "FOR UPDATE | FOR VIEW | FOR REFERENCE"},

	// Condition keywords
	"AND":      {Name: "AND", Description: "Combines conditions (all must be true)", Syntax: "condition AND condition"},
	"OR":       {Name: "OR", Description: "Combines conditions (any can be true)", Syntax: "condition OR condition"},
	"NOT":      {Name: "NOT", Description: "Negates a condition", Syntax: "NOT condition | field NOT IN (...)"},
	"IN":       {Name: "IN", Description: "Matches any value in a list or semi-join subquery", Syntax: "field IN (value, ...) | Id IN (SELECT field FROM object)"},
	"LIKE":     {Name: "LIKE", Description: "Pattern match with % (any chars) and _ (one char) wildcards", Syntax: "field LIKE 'Acme%'"},
	"INCLUDES": {Name: "INCLUDES", Description: "Matches multi-select picklists containing the given values", Syntax: "picklist__c INCLUDES ('a;b', 'c')"},
	"EXCLUDES": {Name: "EXCLUDES", Description: "Matches multi-select picklists not containing the given values", Syntax: "picklist__c EXCLUDES ('a;b')"},
	"NULL":     {Name: "NULL", Description: "Represents an absent value", Syntax: "field = NULL | field != NULL"},
	"TRUE":     {Name: "TRUE", Description: "Boolean literal true", Syntax: "IsActive = TRUE"},
	"FALSE":    {Name: "FALSE", Description: "Boolean literal false", Syntax: "IsDeleted = FALSE"},

	// Sort keywords
	"ASC":   {Name: "ASC", Description: "Ascending sort order (default)", Syntax: "ORDER BY field ASC"},
	"DESC":  {Name: "DESC", Description: "Descending sort order", Syntax: "ORDER BY field DESC"},
	"NULLS": {Name: "NULLS", Description: "Positions null values in sorted results", Syntax: "ORDER BY field NULLS FIRST|LAST"},
	"FIRST": {Name: "FIRST", Description: "Sort null values before all others", Syntax: "ORDER BY field NULLS FIRST"},
	"LAST":  {Name: "LAST", Description: "Sort null values after all others", Syntax: "ORDER BY field NULLS LAST"},

	// Polymorphic field keywords
	"TYPEOF": {Name: "TYPEOF", Description: "Selects different fields depending on the concrete type of a polymorphic reference", Syntax: "TYPEOF What WHEN Account THEN Phone ELSE Name END"},
	"WHEN":   {Name: "WHEN", Description: "Names one concrete type branch in a TYPEOF block", Syntax: "WHEN Account THEN field, field"},
	"THEN":   {Name: "THEN", Description: "Lists the fields to select for a TYPEOF branch", Syntax: "WHEN type THEN field, field"},
	"ELSE":   {Name: "ELSE", Description: "Lists the fields to select when no TYPEOF branch matches", Syntax: "ELSE field, field"},
	"END":    {Name: "END", Description: "Closes a TYPEOF block", Syntax: "TYPEOF ... END"},

	// FOR / tracking modes
	"UPDATE":    {Name: "UPDATE", Description: "Locks returned records for update, or with TRACKING/VIEWSTAT updates article statistics", Syntax: "FOR UPDATE | UPDATE TRACKING | UPDATE VIEWSTAT"},
	"VIEW":      {Name: "VIEW", Description: "Updates the last-viewed date of returned records", Syntax: "FOR VIEW"},
	"REFERENCE": {Name: "REFERENCE", Description: "Updates the last-referenced date of returned records", Syntax: "FOR REFERENCE"},
	"TRACKING":  {Name: "TRACKING", Description: "Tracks article keyword searches", Syntax: "UPDATE TRACKING"},
	"VIEWSTAT":  {Name: "VIEWSTAT", Description: "Increments article view counts", Syntax: "UPDATE VIEWSTAT"},

	// WITH modes
	"SECURITY_ENFORCED": {Name: "SECURITY_ENFORCED", Description: "Enforces field- and object-level security; queries touching inaccessible fields fail", Syntax: "WITH SECURITY_ENFORCED"},
	"USER_MODE":         {Name: "USER_MODE", Description: "Runs the query with the running user's permissions", Syntax: "WITH USER_MODE"},
	"SYSTEM_MODE":       {Name: "SYSTEM_MODE", Description: "Runs the query with system permissions, ignoring user access", Syntax: "WITH SYSTEM_MODE"},
	"DATA":              {Name: "DATA", Description: "Used with CATEGORY to filter knowledge articles", Syntax: "WITH DATA CATEGORY group__c AT category__c"},
	"CATEGORY":          {Name: "CATEGORY", Description: "Names the data category group filter", Syntax: "WITH DATA CATEGORY group__c ABOVE category__c"},

	// Data category operators
	"AT":             {Name: "AT", Description: "Matches the exact data category", Syntax: "WITH DATA CATEGORY group AT category"},
	"ABOVE":          {Name: "ABOVE", Description: "Matches the category and its ancestors", Syntax: "WITH DATA CATEGORY group ABOVE category"},
	"BELOW":          {Name: "BELOW", Description: "Matches the category and its descendants", Syntax: "WITH DATA CATEGORY group BELOW category"},
	"ABOVE_OR_BELOW": {Name: "ABOVE_OR_BELOW", Description: "Matches the category, its ancestors, and its descendants", Syntax: "WITH DATA CATEGORY group ABOVE_OR_BELOW category"},

	// Grouping extensions
	"ROLLUP": {Name: "ROLLUP", Description: "Adds subtotal rows for grouped results", Syntax: "GROUP BY ROLLUP (field, field)"},
	"CUBE":   {Name: "CUBE", Description: "Adds subtotal rows for all grouping combinations", Syntax: "GROUP BY CUBE (field, field)"},
}

// Functions is a map of SOQL functions to their documentation.
var Functions = map[string]*FunctionInfo{
	// Aggregates
	"count":          {Name: "COUNT", Signature: "COUNT() | COUNT(field)", ReturnType: "Integer", Description: "Counts returned records, or records with a non-null field value"},
	"count_distinct": {Name: "COUNT_DISTINCT", Signature: "COUNT_DISTINCT(field)", ReturnType: "Integer", Description: "Counts distinct non-null field values"},
	"sum":            {Name: "SUM", Signature: "SUM(field)", ReturnType: "varies", Description: "Returns the sum of a numeric field"},
	"avg":            {Name: "AVG", Signature: "AVG(field)", ReturnType: "varies", Description: "Returns the average of a numeric field"},
	"min":            {Name: "MIN", Signature: "MIN(field)", ReturnType: "varies", Description: "Returns the minimum field value"},
	"max":            {Name: "MAX", Signature: "MAX(field)", ReturnType: "varies", Description: "Returns the maximum field value"},
	"grouping":       {Name: "GROUPING", Signature: "GROUPING(field)", ReturnType: "Integer", Description: "Distinguishes subtotal rows (1) from data rows (0) in ROLLUP/CUBE results"},

	// Date grouping
	"calendar_month":   {Name: "CALENDAR_MONTH", Signature: "CALENDAR_MONTH(dateField)", ReturnType: "Integer", Description: "Month number (1-12) of a date, for grouping"},
	"calendar_quarter": {Name: "CALENDAR_QUARTER", Signature: "CALENDAR_QUARTER(dateField)", ReturnType: "Integer", Description: "Calendar quarter (1-4) of a date, for grouping"},
	"calendar_year":    {Name: "CALENDAR_YEAR", Signature: "CALENDAR_YEAR(dateField)", ReturnType: "Integer", Description: "Calendar year of a date, for grouping"},
	"day_in_month":     {Name: "DAY_IN_MONTH", Signature: "DAY_IN_MONTH(dateField)", ReturnType: "Integer", Description: "Day of month (1-31) of a date"},
	"day_in_week":      {Name: "DAY_IN_WEEK", Signature: "DAY_IN_WEEK(dateField)", ReturnType: "Integer", Description: "Day of week (1 = Sunday) of a date"},
	"day_in_year":      {Name: "DAY_IN_YEAR", Signature: "DAY_IN_YEAR(dateField)", ReturnType: "Integer", Description: "Day of year (1-366) of a date"},
	"day_only":         {Name: "DAY_ONLY", Signature: "DAY_ONLY(dateTimeField)", ReturnType: "Date", Description: "Date portion of a datetime field"},
	"hour_in_day":      {Name: "HOUR_IN_DAY", Signature: "HOUR_IN_DAY(dateTimeField)", ReturnType: "Integer", Description: "Hour (0-23) of a datetime field"},
	"week_in_month":    {Name: "WEEK_IN_MONTH", Signature: "WEEK_IN_MONTH(dateField)", ReturnType: "Integer", Description: "Week within the month (1-5) of a date"},
	"week_in_year":     {Name: "WEEK_IN_YEAR", Signature: "WEEK_IN_YEAR(dateField)", ReturnType: "Integer", Description: "Week within the year (1-53) of a date"},
	"fiscal_month":     {Name: "FISCAL_MONTH", Signature: "FISCAL_MONTH(dateField)", ReturnType: "Integer", Description: "Fiscal month of a date, per the org's fiscal year settings"},
	"fiscal_quarter":   {Name: "FISCAL_QUARTER", Signature: "FISCAL_QUARTER(dateField)", ReturnType: "Integer", Description: "Fiscal quarter of a date, per the org's fiscal year settings"},
	"fiscal_year":      {Name: "FISCAL_YEAR", Signature: "FISCAL_YEAR(dateField)", ReturnType: "Integer", Description: "Fiscal year of a date, per the org's fiscal year settings"},

	// Formatting and localization
	"format":          {Name: "FORMAT", Signature: "FORMAT(field)", ReturnType: "String", Description: "Formats number, date, and currency fields per the running user's locale"},
	"tolabel":         {Name: "toLabel", Signature: "toLabel(field)", ReturnType: "String", Description: "Translates picklist values to the running user's language"},
	"convertcurrency": {Name: "convertCurrency", Signature: "convertCurrency(currencyField)", ReturnType: "Currency", Description: "Converts currency fields to the running user's currency"},
	"converttimezone": {Name: "convertTimezone", Signature: "convertTimezone(dateTimeField)", ReturnType: "DateTime", Description: "Converts a datetime to the running user's time zone inside date functions"},

	// Location
	"distance":    {Name: "DISTANCE", Signature: "DISTANCE(locField, GEOLOCATION(lat, lon), 'mi'|'km')", ReturnType: "Number", Description: "Distance between a location field and a fixed point"},
	"geolocation": {Name: "GEOLOCATION", Signature: "GEOLOCATION(latitude, longitude)", ReturnType: "Location", Description: "Constructs a geolocation point for DISTANCE comparisons"},

	// Field groups
	"fields": {Name: "FIELDS", Signature: "FIELDS(ALL|STANDARD|CUSTOM)", ReturnType: "field set", Description: "Selects all, all standard, or all custom fields without listing them"},
}

// DateLiterals is a map of named date literals to their documentation.
var DateLiterals = map[string]*DateLiteralInfo{
	"today":     {Name: "TODAY", Description: "All of the current day", Example: "WHERE CreatedDate = TODAY"},
	"yesterday": {Name: "YESTERDAY", Description: "All of the previous day", Example: "WHERE CreatedDate = YESTERDAY"},
	"tomorrow":  {Name: "TOMORROW", Description: "All of the following day", Example: "WHERE CloseDate = TOMORROW"},

	"this_week":  {Name: "THIS_WEEK", Description: "The current week, per the locale's first day of week", Example: "WHERE CreatedDate = THIS_WEEK"},
	"last_week":  {Name: "LAST_WEEK", Description: "The week before the current one", Example: "WHERE CreatedDate = LAST_WEEK"},
	"next_week":  {Name: "NEXT_WEEK", Description: "The week after the current one", Example: "WHERE CloseDate = NEXT_WEEK"},
	"this_month": {Name: "THIS_MONTH", Description: "The current calendar month", Example: "WHERE CreatedDate = THIS_MONTH"},
	"last_month": {Name: "LAST_MONTH", Description: "The month before the current one", Example: "WHERE CreatedDate = LAST_MONTH"},
	"next_month": {Name: "NEXT_MONTH", Description: "The month after the current one", Example: "WHERE CloseDate = NEXT_MONTH"},

	"this_quarter": {Name: "THIS_QUARTER", Description: "The current calendar quarter", Example: "WHERE CloseDate = THIS_QUARTER"},
	"last_quarter": {Name: "LAST_QUARTER", Description: "The quarter before the current one", Example: "WHERE CloseDate = LAST_QUARTER"},
	"next_quarter": {Name: "NEXT_QUARTER", Description: "The quarter after the current one", Example: "WHERE CloseDate = NEXT_QUARTER"},
	"this_year":    {Name: "THIS_YEAR", Description: "The current calendar year", Example: "WHERE CloseDate = THIS_YEAR"},
	"last_year":    {Name: "LAST_YEAR", Description: "The year before the current one", Example: "WHERE CreatedDate = LAST_YEAR"},
	"next_year":    {Name: "NEXT_YEAR", Description: "The year after the current one", Example: "WHERE CloseDate = NEXT_YEAR"},

	"this_fiscal_quarter": {Name: "THIS_FISCAL_QUARTER", Description: "The current fiscal quarter, per the org's fiscal year settings", Example: "WHERE CloseDate = THIS_FISCAL_QUARTER"},
	"last_fiscal_quarter": {Name: "LAST_FISCAL_QUARTER", Description: "The fiscal quarter before the current one", Example: "WHERE CloseDate = LAST_FISCAL_QUARTER"},
	"next_fiscal_quarter": {Name: "NEXT_FISCAL_QUARTER", Description: "The fiscal quarter after the current one", Example: "WHERE CloseDate = NEXT_FISCAL_QUARTER"},
	"this_fiscal_year":    {Name: "THIS_FISCAL_YEAR", Description: "The current fiscal year", Example: "WHERE CloseDate = THIS_FISCAL_YEAR"},
	"last_fiscal_year":    {Name: "LAST_FISCAL_YEAR", Description: "The fiscal year before the current one", Example: "WHERE CloseDate = LAST_FISCAL_YEAR"},
	"next_fiscal_year":    {Name: "NEXT_FISCAL_YEAR", Description: "The fiscal year after the current one", Example: "WHERE CloseDate = NEXT_FISCAL_YEAR"},

	"last_90_days": {Name: "LAST_90_DAYS", Description: "The previous 90 days, including today", Example: "WHERE CreatedDate = LAST_90_DAYS"},
	"next_90_days": {Name: "NEXT_90_DAYS", Description: "The following 90 days, starting tomorrow", Example: "WHERE CloseDate = NEXT_90_DAYS"},

	"last_n_days":   {Name: "LAST_N_DAYS:n", Description: "The previous n days, including today", Example: "WHERE CreatedDate = LAST_N_DAYS:30"},
	"next_n_days":   {Name: "NEXT_N_DAYS:n", Description: "The following n days, starting tomorrow", Example: "WHERE CloseDate = NEXT_N_DAYS:15"},
	"n_days_ago":    {Name: "N_DAYS_AGO:n", Description: "The single day n days before today", Example: "WHERE CreatedDate = N_DAYS_AGO:7"},
	"last_n_weeks":  {Name: "LAST_N_WEEKS:n", Description: "The previous n weeks, not including the current one", Example: "WHERE CreatedDate = LAST_N_WEEKS:4"},
	"next_n_weeks":  {Name: "NEXT_N_WEEKS:n", Description: "The following n weeks, starting next week", Example: "WHERE CloseDate = NEXT_N_WEEKS:2"},
	"n_weeks_ago":   {Name: "N_WEEKS_AGO:n", Description: "The single week n weeks before the current one", Example: "WHERE CreatedDate = N_WEEKS_AGO:3"},
	"last_n_months": {Name: "LAST_N_MONTHS:n", Description: "The previous n months, not including the current one", Example: "WHERE CreatedDate = LAST_N_MONTHS:6"},
	"next_n_months": {Name: "NEXT_N_MONTHS:n", Description: "The following n months, starting next month", Example: "WHERE CloseDate = NEXT_N_MONTHS:3"},
	"n_months_ago":  {Name: "N_MONTHS_AGO:n", Description: "The single month n months before the current one", Example: "WHERE CreatedDate = N_MONTHS_AGO:12"},

	"last_n_quarters": {Name: "LAST_N_QUARTERS:n", Description: "The previous n quarters, not including the current one", Example: "WHERE CloseDate = LAST_N_QUARTERS:2"},
	"next_n_quarters": {Name: "NEXT_N_QUARTERS:n", Description: "The following n quarters, starting next quarter", Example: "WHERE CloseDate = NEXT_N_QUARTERS:2"},
	"n_quarters_ago":  {Name: "N_QUARTERS_AGO:n", Description: "The single quarter n quarters before the current one", Example: "WHERE CloseDate = N_QUARTERS_AGO:1"},
	"last_n_years":    {Name: "LAST_N_YEARS:n", Description: "The previous n years, not including the current one", Example: "WHERE CreatedDate = LAST_N_YEARS:2"},
	"next_n_years":    {Name: "NEXT_N_YEARS:n", Description: "The following n years, starting next year", Example: "WHERE CloseDate = NEXT_N_YEARS:1"},
	"n_years_ago":     {Name: "N_YEARS_AGO:n", Description: "The single year n years before the current one", Example: "WHERE CreatedDate = N_YEARS_AGO:2"},

	"last_n_fiscal_quarters": {Name: "LAST_N_FISCAL_QUARTERS:n", Description: "The previous n fiscal quarters, not including the current one", Example: "WHERE CloseDate = LAST_N_FISCAL_QUARTERS:3"},
	"next_n_fiscal_quarters": {Name: "NEXT_N_FISCAL_QUARTERS:n", Description: "The following n fiscal quarters, starting next fiscal quarter", Example: "WHERE CloseDate = NEXT_N_FISCAL_QUARTERS:2"},
	"n_fiscal_quarters_ago":  {Name: "N_FISCAL_QUARTERS_AGO:n", Description: "The single fiscal quarter n fiscal quarters before the current one", Example: "WHERE CloseDate = N_FISCAL_QUARTERS_AGO:1"},
	"last_n_fiscal_years":    {Name: "LAST_N_FISCAL_YEARS:n", Description: "The previous n fiscal years, not including the current one", Example: "WHERE CloseDate = LAST_N_FISCAL_YEARS:2"},
	"next_n_fiscal_years":    {Name: "NEXT_N_FISCAL_YEARS:n", Description: "The following n fiscal years, starting next fiscal year", Example: "WHERE CloseDate = NEXT_N_FISCAL_YEARS:1"},
	"n_fiscal_years_ago":     {Name: "N_FISCAL_YEARS_AGO:n", Description: "The single fiscal year n fiscal years before the current one", Example: "WHERE CloseDate = N_FISCAL_YEARS_AGO:1"},
}

// GetKeywordInfo returns hover info for a keyword.
func GetKeywordInfo(name string) *KeywordInfo {
	return Keywords[strings.ToUpper(name)]
}

// GetFunctionInfo returns hover info for a function.
func GetFunctionInfo(name string) *FunctionInfo {
	return Functions[strings.ToLower(name)]
}

// GetDateLiteralInfo returns hover info for a named date literal.
func GetDateLiteralInfo(name string) *DateLiteralInfo {
	return DateLiterals[strings.ToLower(name)]
}
