package models

// Category is a job category shown by clients when posting or filtering jobs.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var Categories = []Category{
	{ID: "food_service", Name: "Servicio de Alimentos", Icon: "restaurant"},
	{ID: "retail", Name: "Retail / Ventas", Icon: "store"},
	{ID: "cleaning", Name: "Limpieza", Icon: "cleaning-services"},
	{ID: "delivery", Name: "Entregas", Icon: "delivery-dining"},
	{ID: "hospitality", Name: "Hospitalidad", Icon: "hotel"},
	{ID: "events", Name: "Eventos", Icon: "celebration"},
	{ID: "warehouse", Name: "Almacén", Icon: "warehouse"},
	{ID: "customer_service", Name: "Atención al Cliente", Icon: "support-agent"},
	{ID: "admin", Name: "Administrativo", Icon: "description"},
	{ID: "other", Name: "Otro", Icon: "more-horiz"},
}

// Skills is the suggested skill vocabulary. Profiles and jobs may use others.
var Skills = []string{
	"Barista", "Cocina", "Atención al cliente", "Caja registradora", "Limpieza",
	"Organización", "Manejo de inventario", "Conducir", "Inglés", "Portugués",
	"Servicio de mesa", "Bartender", "Seguridad", "Recepción", "Computación básica",
	"Excel", "Redes sociales", "Fotografía", "Carga pesada", "Primeros auxilios",
}
