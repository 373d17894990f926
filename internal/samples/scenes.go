// Package samples renders the synthetic scenes offered during style
// discovery. Each scene is a soft abstract landscape painted from a small
// palette, deterministic for its ID.
package samples

import (
	"image/color"
)

// Scene describes one sample.
type Scene struct {
	ID        string         `json:"id"`
	SceneType string         `json:"scene_type"`
	TimeOfDay string         `json:"time_of_day"`
	Label     string         `json:"label"`
	Palette   [4]color.NRGBA `json:"-"`
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Palette order: sky top, sky bottom, ground, accent.
var scenes = []Scene{
	{"street_sunrise", "street", "sunrise", "Street - Sunrise",
		[4]color.NRGBA{rgb(255, 160, 80), rgb(120, 140, 170), rgb(200, 120, 60), rgb(80, 90, 120)}},
	{"city_night", "city", "night", "City - Night",
		[4]color.NRGBA{rgb(20, 30, 80), rgb(255, 60, 150), rgb(60, 220, 255), rgb(30, 20, 60)}},
	{"grassland_noon", "grassland", "noon", "Grassland - Noon",
		[4]color.NRGBA{rgb(100, 200, 60), rgb(60, 160, 40), rgb(120, 200, 240), rgb(180, 220, 80)}},
	{"ocean_sunset", "ocean", "sunset", "Ocean - Sunset",
		[4]color.NRGBA{rgb(20, 50, 120), rgb(255, 120, 40), rgb(200, 60, 30), rgb(30, 80, 160)}},
	{"desert_golden_hour", "desert", "golden_hour", "Desert - Golden Hour",
		[4]color.NRGBA{rgb(220, 180, 60), rgb(180, 130, 50), rgb(240, 200, 100), rgb(160, 110, 40)}},
	{"forest_blue_hour", "forest", "blue_hour", "Forest - Blue Hour",
		[4]color.NRGBA{rgb(20, 80, 50), rgb(40, 60, 120), rgb(30, 100, 70), rgb(50, 70, 140)}},
	{"snowy_mountain_dawn", "snowy_mountain", "dawn", "Snowy Mountain - Dawn",
		[4]color.NRGBA{rgb(230, 230, 250), rgb(200, 180, 220), rgb(180, 200, 240), rgb(240, 210, 230)}},
	{"indoor_evening", "indoor", "evening", "Indoor - Evening",
		[4]color.NRGBA{rgb(220, 180, 100), rgb(180, 140, 80), rgb(160, 120, 60), rgb(200, 160, 90)}},
	{"beach_noon", "beach", "noon", "Beach - Noon",
		[4]color.NRGBA{rgb(40, 200, 180), rgb(240, 220, 140), rgb(60, 180, 200), rgb(220, 200, 120)}},
	{"lake_sunrise", "lake", "sunrise", "Lake - Sunrise",
		[4]color.NRGBA{rgb(80, 120, 180), rgb(255, 160, 80), rgb(60, 100, 160), rgb(220, 140, 60)}},
	{"valley_sunset", "valley", "sunset", "Valley - Sunset",
		[4]color.NRGBA{rgb(180, 60, 100), rgb(60, 120, 50), rgb(200, 80, 120), rgb(40, 100, 60)}},
	{"skyline_blue_hour", "skyline", "blue_hour", "Skyline - Blue Hour",
		[4]color.NRGBA{rgb(60, 90, 150), rgb(200, 170, 100), rgb(40, 70, 130), rgb(180, 150, 80)}},
}

// Scenes returns every sample scene in presentation order.
func Scenes() []Scene {
	out := make([]Scene, len(scenes))
	copy(out, scenes)
	return out
}

// Find returns the scene with the given ID.
func Find(id string) (Scene, bool) {
	for _, s := range scenes {
		if s.ID == id {
			return s, true
		}
	}
	return Scene{}, false
}
