// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import "github.com/observatorio/geonoticias/spatial"

// Boxes carry about half a degree of margin over the national borders.
var defaultCountries = []Country{
	{"ar", "Argentina", spatial.BoundingBox{MinLat: -56.0, MaxLat: -21.0, MinLng: -74.0, MaxLng: -53.0}},
	{"bo", "Bolivia", spatial.BoundingBox{MinLat: -23.5, MaxLat: -9.5, MinLng: -70.0, MaxLng: -57.0}},
	{"br", "Brasil", spatial.BoundingBox{MinLat: -34.0, MaxLat: 5.5, MinLng: -74.5, MaxLng: -28.5}},
	// includes Isla de Pascua
	{"cl", "Chile", spatial.BoundingBox{MinLat: -56.5, MaxLat: -17.0, MinLng: -110.0, MaxLng: -66.0}},
	{"co", "Colombia", spatial.BoundingBox{MinLat: -4.5, MaxLat: 13.5, MinLng: -82.0, MaxLng: -66.5}},
	// includes Galápagos
	{"ec", "Ecuador", spatial.BoundingBox{MinLat: -5.1, MaxLat: 1.7, MinLng: -92.1, MaxLng: -75.0}},
	{"mx", "México", spatial.BoundingBox{MinLat: 14.3, MaxLat: 32.8, MinLng: -118.5, MaxLng: -86.5}},
	{"pe", "Perú", spatial.BoundingBox{MinLat: -18.5, MaxLat: 0.0, MinLng: -81.5, MaxLng: -68.5}},
	{"py", "Paraguay", spatial.BoundingBox{MinLat: -28.0, MaxLat: -19.0, MinLng: -63.0, MaxLng: -54.0}},
	{"uy", "Uruguay", spatial.BoundingBox{MinLat: -36.0, MaxLat: -29.0, MinLng: -59.0, MaxLng: -52.0}},
	{"ve", "Venezuela", spatial.BoundingBox{MinLat: 0.5, MaxLat: 15.8, MinLng: -73.5, MaxLng: -59.5}},
}

func city(name, country string, lat, lng float64, aliases ...string) Place {
	return Place{
		Name:    name,
		Aliases: aliases,
		Country: country,
		Kind:    KindCity,
		Point:   spatial.Point{Lat: lat, Lng: lng},
	}
}

func province(name, country string, lat, lng float64, aliases ...string) Place {
	p := city(name, country, lat, lng, aliases...)
	p.Kind = KindProvince

	return p
}

// Names shared by several countries (San Lorenzo, Trinidad, Santa Cruz, León)
// are left out on purpose: a wrong gazetteer hit skips every later check.
var defaultPlaces = []Place{
	// Argentina
	city("Buenos Aires", "ar", -34.6037, -58.3816, "CABA", "Capital Federal", "Ciudad Autónoma de Buenos Aires"),
	city("Córdoba", "ar", -31.4201, -64.1888),
	city("Rosario", "ar", -32.9442, -60.6505),
	city("Mendoza", "ar", -32.8895, -68.8458),
	city("La Plata", "ar", -34.9215, -57.9545),
	city("Mar del Plata", "ar", -38.0055, -57.5426),
	city("San Miguel de Tucumán", "ar", -26.8083, -65.2176, "Tucumán"),
	city("Salta", "ar", -24.7821, -65.4232),
	city("Santa Fe", "ar", -31.6333, -60.7000),
	city("San Juan", "ar", -31.5375, -68.5364),
	city("Resistencia", "ar", -27.4606, -58.9839),
	city("Neuquén", "ar", -38.9516, -68.0591),
	city("Formosa", "ar", -26.1775, -58.1781),
	city("San Luis", "ar", -33.3017, -66.3378),
	city("La Rioja", "ar", -29.4131, -66.8558),
	city("Catamarca", "ar", -28.4696, -65.7852, "San Fernando del Valle de Catamarca"),
	city("Corrientes", "ar", -27.4692, -58.8306),
	city("Río Cuarto", "ar", -33.1232, -64.3493),
	city("Bariloche", "ar", -41.1335, -71.3103, "San Carlos de Bariloche"),
	city("Tandil", "ar", -37.3217, -59.1332),
	city("San Salvador de Jujuy", "ar", -24.1858, -65.2995, "Jujuy"),
	city("Bahía Blanca", "ar", -38.7183, -62.2663),
	city("Ushuaia", "ar", -54.8019, -68.3030),
	city("Posadas", "ar", -27.3671, -55.8961),
	city("Santiago del Estero", "ar", -27.7951, -64.2615),
	province("Misiones", "ar", -27.0000, -54.5000),
	province("Chubut", "ar", -43.8000, -68.5000),
	province("Entre Ríos", "ar", -32.0000, -59.2000),
	province("Chaco", "ar", -26.4000, -60.8000),
	province("Tierra del Fuego", "ar", -54.3000, -67.7000),

	// Chile
	city("Santiago", "cl", -33.4489, -70.6693, "Santiago de Chile"),
	city("Valparaíso", "cl", -33.0472, -71.6127),
	city("Concepción", "cl", -36.8201, -73.0444),
	city("Antofagasta", "cl", -23.6509, -70.3975),
	city("Viña del Mar", "cl", -33.0245, -71.5518),
	city("Talca", "cl", -35.4264, -71.6554),
	city("Rancagua", "cl", -34.1708, -70.7444),
	city("Temuco", "cl", -38.7359, -72.5904),
	city("Iquique", "cl", -20.2307, -70.1357),
	city("Puerto Montt", "cl", -41.4689, -72.9411),
	city("Arica", "cl", -18.4783, -70.3126),
	city("Calama", "cl", -22.4544, -68.9294),
	city("La Serena", "cl", -29.9027, -71.2519),
	city("Copiapó", "cl", -27.3668, -70.3323),
	city("Coquimbo", "cl", -29.9533, -71.3436),
	city("Osorno", "cl", -40.5739, -73.1335),
	city("Valdivia", "cl", -39.8142, -73.2459),
	city("Punta Arenas", "cl", -53.1638, -70.9171),
	city("Chillán", "cl", -36.6066, -72.1034),
	city("Los Ángeles", "cl", -37.4697, -72.3537),
	city("La Calera", "cl", -32.7867, -71.1897),
	city("San Antonio", "cl", -33.5933, -71.6217),

	// Uruguay
	city("Montevideo", "uy", -34.9011, -56.1645),
	city("Punta del Este", "uy", -34.9680, -54.9510),
	city("Maldonado", "uy", -34.9000, -54.9500),
	city("Salto", "uy", -31.3833, -57.9667),
	city("Paysandú", "uy", -32.3214, -58.0756),
	city("Rivera", "uy", -30.9053, -55.5508),
	city("Las Piedras", "uy", -34.7302, -56.2191),
	city("Melo", "uy", -32.3667, -54.1833),
	city("Colonia del Sacramento", "uy", -34.4626, -57.8400),

	// Paraguay
	city("Asunción", "py", -25.2637, -57.5759),
	city("Ciudad del Este", "py", -25.5097, -54.6111),
	city("Encarnación", "py", -27.3306, -55.8667),
	city("Luque", "py", -25.2700, -57.4872),
	city("Lambaré", "py", -25.3468, -57.6065),
	city("Fernando de la Mora", "py", -25.3386, -57.5217),

	// Bolivia
	city("La Paz", "bo", -16.4897, -68.1193),
	city("El Alto", "bo", -16.5000, -68.1500),
	city("Santa Cruz de la Sierra", "bo", -17.7833, -63.1821),
	city("Cochabamba", "bo", -17.3895, -66.1568),
	city("Sucre", "bo", -19.0196, -65.2619),
	city("Oruro", "bo", -17.9647, -67.1060),
	city("Potosí", "bo", -19.5836, -65.7531),
	city("Tarija", "bo", -21.5355, -64.7296),

	// Perú
	city("Lima", "pe", -12.0464, -77.0428),
	city("Arequipa", "pe", -16.4090, -71.5375),
	city("Cusco", "pe", -13.5319, -71.9675, "Cuzco"),

	// México
	city("Ciudad de México", "mx", 19.4326, -99.1332, "CDMX"),
	city("Guadalajara", "mx", 20.6597, -103.3496),
	city("Monterrey", "mx", 25.6866, -100.3161),
	city("Puebla", "mx", 19.0414, -98.2063),
	city("Tijuana", "mx", 32.5149, -117.0382),
	city("Culiacán", "mx", 24.8091, -107.3940),
	city("Mexicali", "mx", 32.6245, -115.4523),
	city("Ciudad Juárez", "mx", 31.6904, -106.4245),
}
