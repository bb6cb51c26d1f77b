package engine

import (
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// forStripes splits rows into horizontal stripes, one goroutine each.
func forStripes(height int, fn func(yStart, yEnd int)) {
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		if startY >= height {
			break
		}
		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			fn(yStart, yEnd)
		}(startY, endY)
	}
	wg.Wait()
}

// rgbaToMat converts img to a BGR Mat. Alpha is dropped.
func rgbaToMat(img *image.RGBA) gocv.Mat {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)

	forStripes(height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < width; x++ {
				o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
				// OpenCV uses BGR format
				mat.SetUCharAt(y, x*3+0, img.Pix[o+2])
				mat.SetUCharAt(y, x*3+1, img.Pix[o+1])
				mat.SetUCharAt(y, x*3+2, img.Pix[o+0])
			}
		}
	})
	return mat
}

// matToRGBA converts a BGR or single-channel Mat back to RGBA. When alpha
// has the same size as mat its alpha channel is carried over, otherwise
// the result is opaque.
func matToRGBA(mat gocv.Mat, alpha *image.RGBA) *image.RGBA {
	h, w := mat.Rows(), mat.Cols()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	ch := mat.Channels()
	keepAlpha := alpha != nil && alpha.Bounds().Dx() == w && alpha.Bounds().Dy() == h

	forStripes(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			rowOffset := y * img.Stride
			for x := 0; x < w; x++ {
				p := rowOffset + x*4
				if ch == 1 {
					v := mat.GetUCharAt(y, x)
					img.Pix[p], img.Pix[p+1], img.Pix[p+2] = v, v, v
				} else {
					img.Pix[p+0] = mat.GetUCharAt(y, x*ch+2) // R
					img.Pix[p+1] = mat.GetUCharAt(y, x*ch+1) // G
					img.Pix[p+2] = mat.GetUCharAt(y, x*ch+0) // B
				}
				img.Pix[p+3] = 255
				if keepAlpha {
					img.Pix[p+3] = alpha.Pix[alpha.PixOffset(alpha.Bounds().Min.X+x, alpha.Bounds().Min.Y+y)+3]
				}
			}
		}
	})
	return img
}
