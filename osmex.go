// Package osmex downloads OpenStreetMap extracts from public mirrors,
// reads them into tabular layers and imports them into PostgreSQL.
package osmex

const Version = "0.3.0"
