package trainer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	cpy "github.com/otiai10/copy"

	"github.com/tunelab/tune/pkg/afero"
	"github.com/tunelab/tune/pkg/metrics"
	"github.com/tunelab/tune/pkg/vcs"
)

// Publish creates (or reuses) the hub repository for the model alias, clones
// it, stages the model card and the training artifacts, and pushes a single
// commit. Weights are uploaded only when the publish config asks for them;
// the default is card and hyperparameters only.
func (o *Orchestrator) Publish(ctx context.Context) error {
	if o.config.OutputDir == "" {
		return fmt.Errorf("output_dir should be specified to publish artifacts")
	}
	if o.config.Publish.ModelAlias == "" {
		return fmt.Errorf("publish.model_alias should be specified")
	}
	if o.deps.Repos == nil || o.deps.Cloner == nil {
		return fmt.Errorf("publish dependencies are incomplete")
	}
	if err := o.Construct(ctx); err != nil {
		return err
	}

	// The report is the proof the pipeline ran; refuse to publish without it.
	report, err := metrics.Load(o.deps.Fs, o.config.OutputDir)
	if err != nil {
		return fmt.Errorf("loading evaluation report (run evaluate first): %w", err)
	}

	repoURL, err := o.deps.Repos.CreateRepo(ctx, o.config.Publish.Organization, o.config.Publish.ModelAlias)
	if err != nil {
		return fmt.Errorf("creating hub repository: %w", err)
	}

	workDir := o.config.Publish.WorkDir
	if workDir == "" {
		workDir = o.config.Publish.ModelAlias
	}

	repo, err := o.deps.Cloner.Clone(ctx, repoURL, workDir)
	if err != nil {
		return err
	}

	if err := o.stageArtifacts(repo.Dir(), report); err != nil {
		return err
	}

	if err := repo.AddAll(); err != nil {
		return err
	}
	hash, err := repo.Commit(o.config.Publish.CommitMessage, vcs.Signature{
		Name:  o.config.Publish.AuthorName,
		Email: o.config.Publish.AuthorEmail,
	})
	if err != nil {
		return err
	}
	if err := repo.Push(ctx); err != nil {
		return err
	}

	o.logger.WithField("url", repoURL).WithField("commit", hash).Info("Published model")
	return nil
}

// stageArtifacts writes the model card and copies the training artifacts into
// the work tree. Failures are collected so one broken artifact does not hide
// the others.
func (o *Orchestrator) stageArtifacts(dir string, report metrics.Report) error {
	var result *multierror.Error

	card, err := o.renderModelCard(report)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("rendering model card: %w", err))
	} else if err := afero.WriteFile(
		o.deps.Fs, filepath.Join(dir, "README.md"), []byte(card), 0o644,
	); err != nil {
		result = multierror.Append(result, fmt.Errorf("writing model card: %w", err))
	}

	if err := o.copyFileArtifact(
		o.config.BestRunHyperparametersPath(),
		filepath.Join(dir, BestRunHyperparametersFileName),
	); err != nil {
		result = multierror.Append(result, err)
	}

	if o.config.Publish.UploadWeights {
		if err := o.copyWeights(dir); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func (o *Orchestrator) copyFileArtifact(src, dest string) error {
	ok, err := afero.Exists(o.deps.Fs, src)
	if err != nil {
		return fmt.Errorf("checking artifact %s: %w", src, err)
	}
	if !ok {
		o.logger.WithField("path", src).Warn("Skipping missing artifact")
		return nil
	}

	data, err := afero.ReadFile(o.deps.Fs, src)
	if err != nil {
		return fmt.Errorf("reading artifact %s: %w", src, err)
	}
	if err := afero.WriteFile(o.deps.Fs, dest, data, 0o644); err != nil {
		return fmt.Errorf("staging artifact %s: %w", dest, err)
	}
	return nil
}

// copyWeights recursively copies the retrained model directory into the work
// tree root, the layout hub repositories expect. Weights live on the real
// filesystem, where the engine persisted them.
func (o *Orchestrator) copyWeights(dir string) error {
	ok, err := afero.DirExists(o.deps.Fs, o.config.BestModelPath())
	if err != nil {
		return fmt.Errorf("checking retrained model: %w", err)
	}
	if !ok {
		return fmt.Errorf("upload_weights is set but %s does not exist", o.config.BestModelPath())
	}

	if err := cpy.Copy(o.config.BestModelPath(), dir); err != nil {
		return fmt.Errorf("copying model weights: %w", err)
	}
	return nil
}
