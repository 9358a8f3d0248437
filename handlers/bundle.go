package handlers

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Auth          *AuthHandler
	Providers     *ProviderHandler
	Bookings      *BookingHandler
	Vehicles      *VehicleHandler
	Catalogue     *CatalogueHandler
	Users         *UserHandler
	Geolocation   *GeolocationHandler
	Notifications *NotificationHandler
	Health        *HealthHandler
}
