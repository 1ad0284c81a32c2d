package entity

// Renderer handles rendering game entities
type Renderer interface {
	RenderRocket(rocket *Rocket)
	RenderObstacle(obstacle *Obstacle)
	Clear()
	Present()
}
