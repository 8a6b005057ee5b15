package auth

import "time"

// countryTimezones maps a user's configured country to an IANA zone for
// presentation-time rendering. The viewer timezone is threaded explicitly
// through each connection handler; nothing here touches process state.
var countryTimezones = map[string]string{
	"Albania":                "Europe/Tirane",
	"Andorra":                "Europe/Andorra",
	"Armenia":                "Asia/Yerevan",
	"Austria":                "Europe/Vienna",
	"Azerbaijan":             "Asia/Baku",
	"Belarus":                "Europe/Minsk",
	"Belgium":                "Europe/Brussels",
	"Bosnia and Herzegovina": "Europe/Sarajevo",
	"Bulgaria":               "Europe/Sofia",
	"Croatia":                "Europe/Zagreb",
	"Cyprus":                 "Asia/Nicosia",
	"Czech Republic":         "Europe/Prague",
	"Denmark":                "Europe/Copenhagen",
	"Estonia":                "Europe/Tallinn",
	"Finland":                "Europe/Helsinki",
	"Macedonia":              "Europe/Skopje",
	"France":                 "Europe/Paris",
	"Georgia":                "Asia/Tbilisi",
	"Germany":                "Europe/Berlin",
	"Greece":                 "Europe/Athens",
	"Hungary":                "Europe/Budapest",
	"Iceland":                "Atlantic/Reykjavik",
	"Ireland":                "Europe/Dublin",
	"Italy":                  "Europe/Rome",
	"Kosovo":                 "Europe/Belgrade",
	"Latvia":                 "Europe/Riga",
	"Liechtenstein":          "Europe/Vaduz",
	"Lithuania":              "Europe/Vilnius",
	"Luxembourg":             "Europe/Luxembourg",
	"Malta":                  "Europe/Malta",
	"Moldova":                "Europe/Chisinau",
	"Monaco":                 "Europe/Monaco",
	"Montenegro":             "Europe/Podgorica",
	"Netherlands":            "Europe/Amsterdam",
	"Norway":                 "Europe/Oslo",
	"Poland":                 "Europe/Warsaw",
	"Portugal":               "Europe/Lisbon",
	"Romania":                "Europe/Bucharest",
	"Russia":                 "Europe/Moscow",
	"San Marino":             "Europe/San_Marino",
	"Serbia":                 "Europe/Belgrade",
	"Slovakia":               "Europe/Bratislava",
	"Slovenia":               "Europe/Ljubljana",
	"Spain":                  "Europe/Madrid",
	"Sweden":                 "Europe/Stockholm",
	"Switzerland":            "Europe/Zurich",
	"Turkey":                 "Europe/Istanbul",
	"Ukraine":                "Europe/Kyiv",
	"United Kingdom":         "Europe/London",
}

// LocationFor resolves a country to its zone, falling back to UTC for users
// without a configured country or an unknown entry.
func LocationFor(country string) *time.Location {
	name, ok := countryTimezones[country]
	if !ok {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
