package catalog

// Entries is the static technical catalog (fuente CENACE). Order
// matters: duplicate claves exist and Find returns the first row in
// table order.
var Entries = []Entry{
	{
		ClaveEnlace:    "MIL-73200-DGU",
		Numero:         "73200",
		Descripcion:    "MILENIO-DURANGO UNO",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            11.6,
		NC:             0,
		Conductor:      "477-ACSR",
		TipoEstructura: "IS",
		NumEstructuras: 81,
		Anio:           2018,
		Comp:           "N",
		CveSap:         "0000",
		Brecha:         0.0,
		ConfCond:       "HORIZONTAL",
		Pob:            "U",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "CLI-73290-CMI",
		Numero:         "73290",
		Descripcion:    "CENTRO LOG. IND. DE DURANGO -",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            10.68,
		NC:             0,
		Conductor:      "477-ACSR",
		TipoEstructura: "1210SME",
		NumEstructuras: 65,
		Anio:           2020,
		Comp:           "S",
		CveSap:         "0000",
		Brecha:         0.0,
		ConfCond:       "HORIZONTAL",
		Pob:            "U",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "CLI-73330-GVR",
		Numero:         "73330",
		Descripcion:    "CENTRO LOGÍSTICO E INDUSTRIAL DE",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            48.45,
		NC:             0,
		Conductor:      "336-ACSR",
		TipoEstructura: "1210MEL",
		NumEstructuras: 219,
		Anio:           2015,
		Comp:           "S",
		CveSap:         "P358",
		Brecha:         0.0,
		ConfCond:       "HORIZONTAL",
		Pob:            "D",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "AMN-73350-CMP",
		Numero:         "73350",
		Descripcion:    "AMADO NERVO - MANIOBRAS PARRILLA",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            15.27,
		NC:             0,
		Conductor:      "4/0-ACSR-AW",
		TipoEstructura: "1211DML",
		NumEstructuras: 64,
		Anio:           2015,
		Comp:           "S",
		CveSap:         "P353",
		Brecha:         0.0,
		ConfCond:       "HORIZONTAL",
		Pob:            "R",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "MAC-73370-AMN",
		Numero:         "73370",
		Descripcion:    "MANIOBRAS CENTAURO - AMADO NERVO",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            19.75,
		NC:             40,
		Conductor:      "4/0-ACSR",
		TipoEstructura: "1210MEL",
		NumEstructuras: 128,
		Anio:           1965,
		Comp:           "N",
		CveSap:         "P326",
		Brecha:         0.0,
		ConfCond:       "HORIZONTAL",
		Pob:            "R",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "DGO-73430-MZD",
		Numero:         "73430",
		Descripcion:    "DURANGO - MEZQUITAL",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            31.2,
		NC:             0,
		Conductor:      "336-ACSR",
		TipoEstructura: "1210MEL",
		NumEstructuras: 142,
		Anio:           1987,
		Comp:           "N",
		CveSap:         "P210",
		Brecha:         2.5,
		ConfCond:       "VERTICAL",
		Pob:            "R",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "GPA-73620-SLU",
		Numero:         "73620",
		Descripcion:    "GUADALUPE AGUILERA - SANTA LUCÍA",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            44.08,
		NC:             0,
		Conductor:      "266-ACSR",
		TipoEstructura: "1210MEL",
		NumEstructuras: 197,
		Anio:           1978,
		Comp:           "N",
		CveSap:         "P244",
		Brecha:         0.0,
		ConfCond:       "HORIZONTAL",
		Pob:            "R",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "JOM-73810-CNA",
		Numero:         "73810",
		Descripcion:    "JERONIMO ORTIZ - CANATLÁN",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            10.82,
		NC:             40,
		Conductor:      "477-ACSR",
		TipoEstructura: "1211DNE",
		NumEstructuras: 111,
		Anio:           1998,
		Comp:           "N",
		CveSap:         "P195",
		Brecha:         0.0,
		ConfCond:       "VERTICAL",
		Pob:            "U",
		Ent:            "D",
	},
	// 73990 appears twice (re-tendido 2020 sobre el enlace original);
	// Find resolves to this first row.
	{
		ClaveEnlace:    "JOM-73990-LAF",
		Numero:         "73990",
		Descripcion:    "JERONIMO ORTIZ - LA FLOR",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            10.98,
		NC:             40,
		Conductor:      "477-ACSR",
		TipoEstructura: "1416RNE",
		NumEstructuras: 25,
		Anio:           2020,
		Comp:           "N",
		CveSap:         "P293",
		Brecha:         0.0,
		ConfCond:       "VERTICAL",
		Pob:            "U",
		Ent:            "D",
	},
	{
		ClaveEnlace:    "JOM-73990-LAF",
		Numero:         "73990",
		Descripcion:    "JERONIMO ORTIZ - LA FLOR",
		Area:           "6",
		Tension:        "115 kV",
		Kms:            10.98,
		NC:             40,
		Conductor:      "336-ACSR",
		TipoEstructura: "1210MEL",
		NumEstructuras: 72,
		Anio:           1994,
		Comp:           "N",
		CveSap:         "P293",
		Brecha:         0.0,
		ConfCond:       "HORIZONTAL",
		Pob:            "U",
		Ent:            "D",
	},
}
