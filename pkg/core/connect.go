package core

import (
	"errors"
	"strings"
)

// Connect matches producer medias with consumer medias and routes every
// matched codec pair through a shared Receiver. Producer is not started,
// that is up to the caller.
func Connect(prod Producer, cons Consumer) error {
	var prodMedias []*Media
	var matched bool

	consMedias := cons.GetMedias()
	for _, consMedia := range consMedias {
		for _, prodMedia := range prod.GetMedias() {
			prodMedias = append(prodMedias, prodMedia)

			// Step 1. Match producer and consumer codecs list
			prodCodec, consCodec := prodMedia.MatchMedia(consMedia)
			if prodCodec == nil {
				continue
			}

			// Step 2. Get recvonly track from producer
			track, err := prod.GetTrack(prodMedia, prodCodec)
			if err != nil {
				return err
			}

			// Step 3. Add track to consumer
			if err = cons.AddTrack(consMedia, consCodec, track); err != nil {
				return err
			}

			matched = true
			break
		}
	}

	if !matched {
		return matchError(consMedias, prodMedias)
	}

	return nil
}

func matchError(consMedias, prodMedias []*Media) error {
	var prod, cons string

	for _, media := range prodMedias {
		if media.Direction == DirectionRecvonly {
			for _, codec := range media.Codecs {
				prod = appendString(prod, codec.String())
			}
		}
	}

	for _, media := range consMedias {
		if media.Direction == DirectionSendonly {
			for _, codec := range media.Codecs {
				cons = appendString(cons, codec.String())
			}
		}
	}

	return errors.New("core: codecs not matched: " + prod + " => " + cons)
}

func appendString(s, elem string) string {
	if strings.Contains(s, elem) {
		return s
	}
	if len(s) == 0 {
		return elem
	}
	return s + ", " + elem
}
