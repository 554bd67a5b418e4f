// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package extract

// DefaultIgnoreWords are tokens that disqualify a capitalized phrase as a
// place name. They are compared accent and case insensitively.
var DefaultIgnoreWords = []string{
	// títulos
	"señor", "señora", "don", "doña", "sr", "sra", "dr", "dra", "lic", "ing",

	// pronombres
	"su", "sus", "este", "esta", "aquel", "aquella", "ese", "esa",

	// términos genéricos
	"jurisdicción", "sector", "zona", "área", "región", "lugar", "sitio",
	"punto", "parte", "lado", "centro", "norte", "sur", "oeste",

	// drogas y crimen
	"droga", "drogas", "cocaína", "marihuana", "narcotráfico", "narco", "operativo",
	"operativos", "decomiso", "incautación", "laboratorio", "laboratorios", "cárcel",
	"prisión", "penal", "comisaría", "policía", "investigación", "seguridad",
	"gendarmería", "prefectura", "fiscal", "fiscalía", "juzgado", "tribunal",
	"justicia", "juez", "jueza", "causa", "banda", "detenido", "detenidos",

	// administración
	"gobierno", "ministerio", "ministro", "ministra", "secretaría", "departamento",
	"oficina", "dependencia", "institución", "organismo", "entidad", "presidente",
	"presidenta", "gobernador", "gobernadora", "intendente", "congreso", "senado",
	"federal", "nacional", "provincial", "municipal",

	// otros
	"acceso", "manera", "forma", "modo", "tipo", "clase", "especie",
	"cantidad", "número", "total", "pesos", "dólares", "euros",
	"millones", "miles", "cientos", "docenas",

	// calendario
	"lunes", "martes", "miércoles", "jueves", "viernes", "sábado", "domingo",
	"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto",
	"septiembre", "setiembre", "octubre", "noviembre", "diciembre",

	// conectores
	"mientras", "tanto", "luego", "después", "antes", "durante",
	"cuando", "donde", "como", "porque", "aunque", "sino", "según",
	"entonces", "además", "también", "asimismo", "igualmente",

	// verbos
	"está", "estaba", "estuvo", "estará", "ser", "estar", "hacer",
	"tener", "poder", "decir", "ver", "dar", "saber", "querer",
	"pasar", "deber", "poner", "parecer", "quedar", "creer",
	"llevar", "dejar", "seguir", "encontrar", "llamar", "venir",
	"pensar", "salir", "volver", "tomar", "conocer", "realizar",
	"vivir", "sentir", "tratar", "mirar", "contar", "empezar",
	"esperar", "buscar", "existir", "entrar", "trabajar", "escribir",
	"perder", "recibir", "ocurrir", "vender", "cambiar", "nacer",
	"dirigir", "morir", "conseguir", "comenzar", "servir", "sacar",
	"necesitar", "mantener", "resultar", "leer", "caer", "terminar",
	"permitir", "aparecer", "informó", "informa", "detuvieron", "detienen",
	"desarticulan", "allanan", "secuestran", "incautan",
}

// connectors may appear inside a place name and are never checked against
// the ignore list ("Mar del Plata", "Fernando de la Mora").
var connectors = map[string]bool{
	"de": true, "del": true, "la": true, "las": true, "los": true, "el": true,
}
