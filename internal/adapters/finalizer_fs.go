package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"

	"variant-packager/internal/policies"
	"variant-packager/internal/ports"
	"variant-packager/internal/types"
)

type FilesystemFinalizerAdapter struct {
	Policy policies.PurgePolicy
}

func NewFilesystemFinalizerAdapter(policy policies.PurgePolicy) FilesystemFinalizerAdapter {
	return FilesystemFinalizerAdapter{Policy: policy}
}

// Finalize purges disallowed artifacts under root and then hard-links
// byte-identical files together. Running it again on its own output changes
// nothing.
func (a FilesystemFinalizerAdapter) Finalize(ctx context.Context, root string) (types.FinalizeReport, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", root)
		}
		return types.FinalizeReport{}, cleanupError(fmt.Sprintf("staging root %s is unusable", root), err)
	}
	purged, err := a.Purge(ctx, root)
	if err != nil {
		return types.FinalizeReport{}, err
	}
	linked, groups, err := a.Deduplicate(ctx, root)
	if err != nil {
		return types.FinalizeReport{Purged: purged}, err
	}
	report := types.FinalizeReport{Purged: purged, Linked: linked, DuplicateSet: groups}
	log.Ctx(ctx).Info().
		Str("root", root).
		Int("purged", purged).
		Int("linked", linked).
		Int("duplicate_sets", groups).
		Msg("staging root finalized")
	return report, nil
}

// Purge removes every entry the policy disallows and returns how many
// top-level matches were removed. No matches is not an error.
func (a FilesystemFinalizerAdapter) Purge(ctx context.Context, root string) (int, error) {
	var targets []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if a.Policy.MatchDir(d.Name()) {
				targets = append(targets, path)
				return filepath.SkipDir
			}
			return nil
		}
		if a.Policy.MatchFile(d.Name()) {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		return 0, cleanupError("failed to scan staging root", err)
	}
	for _, target := range targets {
		if err := os.RemoveAll(target); err != nil {
			return 0, cleanupError(fmt.Sprintf("failed to remove %s", target), err)
		}
		log.Ctx(ctx).Debug().Str("path", target).Msg("purged")
	}
	return len(targets), nil
}

type inodeKey struct {
	dev uint64
	ino uint64
}

type fileEntry struct {
	path  string
	inode inodeKey
}

type shapeKey struct {
	size int64
	mode uint32
	uid  uint32
	gid  uint32
}

// Deduplicate replaces duplicate regular files with hard links to the
// lexically first path of each group. Symlinks are neither followed nor
// touched. Empty files are grouped like any other content. Files must also
// agree on permissions and ownership to be grouped, so linking never
// changes a path's metadata.
func (a FilesystemFinalizerAdapter) Deduplicate(ctx context.Context, root string) (int, int, error) {
	shapes := map[shapeKey][]fileEntry{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		var st unix.Stat_t
		if err := unix.Lstat(path, &st); err != nil {
			return err
		}
		key := shapeKey{size: st.Size, mode: st.Mode & 0o7777, uid: st.Uid, gid: st.Gid}
		shapes[key] = append(shapes[key], fileEntry{
			path:  path,
			inode: inodeKey{dev: uint64(st.Dev), ino: uint64(st.Ino)},
		})
		return nil
	})
	if err != nil {
		return 0, 0, cleanupError("failed to scan staging root for duplicates", err)
	}

	keys := make([]shapeKey, 0, len(shapes))
	for key, entries := range shapes {
		if len(entries) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return shapes[keys[i]][0].path < shapes[keys[j]][0].path
	})

	linked := 0
	groups := 0
	for _, key := range keys {
		contentGroups, err := groupByContent(ctx, shapes[key])
		if err != nil {
			return linked, groups, err
		}
		for _, group := range contentGroups {
			groups++
			n, err := linkGroup(ctx, group)
			linked += n
			if err != nil {
				return linked, groups, err
			}
		}
	}
	return linked, groups, nil
}

// groupByContent splits same-shaped files into groups of identical content,
// each sorted by path. Files sharing an inode are hashed once.
func groupByContent(ctx context.Context, entries []fileEntry) ([][]fileEntry, error) {
	digests := map[inodeKey][32]byte{}
	byDigest := map[[32]byte][]fileEntry{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, cleanupError("deduplication cancelled", err)
		}
		digest, ok := digests[entry.inode]
		if !ok {
			var err error
			digest, err = hashFile(entry.path)
			if err != nil {
				return nil, cleanupError(fmt.Sprintf("failed to hash %s", entry.path), err)
			}
			digests[entry.inode] = digest
		}
		byDigest[digest] = append(byDigest[digest], entry)
	}
	var groups [][]fileEntry
	for _, group := range byDigest {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].path < group[j].path
		})
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0].path < groups[j][0].path
	})
	return groups, nil
}

func linkGroup(ctx context.Context, group []fileEntry) (int, error) {
	keeper := group[0]
	linked := 0
	for _, entry := range group[1:] {
		if entry.inode == keeper.inode {
			continue
		}
		if entry.inode.dev != keeper.inode.dev {
			return linked, duplicateError(entry.path, keeper.path, unix.EXDEV)
		}
		same, err := sameContent(keeper.path, entry.path)
		if err != nil {
			return linked, cleanupError(fmt.Sprintf("failed to compare %s", entry.path), err)
		}
		if !same {
			continue
		}
		if err := replaceWithLink(keeper.path, entry.path); err != nil {
			return linked, duplicateError(entry.path, keeper.path, err)
		}
		linked++
		log.Ctx(ctx).Debug().Str("path", entry.path).Str("target", keeper.path).Msg("hard-linked duplicate")
	}
	return linked, nil
}

// maxLinkAttempts bounds the search for a free temporary name.
const maxLinkAttempts = 100

// replaceWithLink links target to a temporary name beside path and renames
// it over path, so path never disappears. Existing entries are never
// reused as the temporary name.
func replaceWithLink(target string, path string) error {
	dir, base := filepath.Split(path)
	for attempt := 0; attempt < maxLinkAttempts; attempt++ {
		tmp := filepath.Join(dir, fmt.Sprintf(".%s.dedup-%d", base, attempt))
		err := os.Link(target, tmp)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return err
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return err
		}
		return nil
	}
	return fmt.Errorf("no free temporary name beside %s", path)
}

func hashFile(path string) ([32]byte, error) {
	var digest [32]byte
	file, err := os.Open(path)
	if err != nil {
		return digest, err
	}
	defer file.Close()
	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return digest, err
	}
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

func hashBytes(data []byte) [32]byte {
	return blake3.Sum256(data)
}

func sameContent(a string, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, 32*1024)
	bufB := make([]byte, 32*1024)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errors.Is(errA, io.EOF) || errors.Is(errA, io.ErrUnexpectedEOF)
		doneB := errors.Is(errB, io.EOF) || errors.Is(errB, io.ErrUnexpectedEOF)
		if errA != nil && !doneA {
			return false, errA
		}
		if errB != nil && !doneB {
			return false, errB
		}
		if doneA || doneB {
			return doneA && doneB, nil
		}
	}
}

func cleanupError(msg string, err error) error {
	return types.NewPipelineError(types.ErrorKindCleanup, types.BuildPhaseFinalize,
		errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(msg).
			WithCause(err))
}

func duplicateError(path string, target string, err error) error {
	return types.NewPipelineError(types.ErrorKindDuplicateResolution, types.BuildPhaseFinalize,
		errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to hard-link %s to %s", path, target)).
			WithCause(err))
}

var _ ports.FinalizerPort = FilesystemFinalizerAdapter{}
